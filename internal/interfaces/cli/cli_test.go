package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type fakeHarvester struct {
	res    *harvest.CloneResult
	caseID string
}

func (f *fakeHarvester) CloneProfile(ctx context.Context, caseID string) *harvest.CloneResult {
	f.caseID = caseID
	return f.res
}

type fakeClassifier struct {
	calls int
	err   error
}

func (f *fakeClassifier) Run(ctx context.Context) (*classification.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &classification.Result{Scanned: 4, Updated: 3}, nil
}

type fakeScorer struct{ got adherence.Petition }

func (f *fakeScorer) Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error) {
	f.got = p
	if adjudicatorID == 404 {
		return nil, errors.New(errors.ErrCodeAdjudicatorNotFound, "adjudicator 404 not found")
	}
	return &adherence.Evaluation{
		Adjudicator: &judiciary.Adjudicator{ID: adjudicatorID, Name: "Juízo da 1ª Vara Cível"},
		Match: &adherence.Match{Topic: "Cobrança", Score: 82.5, Similarities: []adherence.TopicSimilarity{
			{Topic: "Cobrança", Score: 82.5},
			{Topic: "Dano Moral", Score: 41},
		}},
	}, nil
}

type fakePurger struct{}

func (fakePurger) PurgeDuplicates(ctx context.Context) (*maintenance.PurgeReport, error) {
	return &maintenance.PurgeReport{Before: 10, After: 7, Removed: 3}, nil
}

type fakeMigrator struct {
	ups, downs int
	version    uint
}

func (f *fakeMigrator) Up() error {
	f.ups++
	f.version = 1
	return nil
}

func (f *fakeMigrator) Down(steps int) error {
	f.downs += steps
	f.version = 0
	return nil
}

func (f *fakeMigrator) Status() (uint, bool, error) { return f.version, false, nil }

type harness struct {
	svc      *Services
	released int
	built    int
}

func (h *harness) factory(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Services, func(), error) {
	h.built++
	return h.svc, func() { h.released++ }, nil
}

// run executes the root command with args and returns stdout and the error.
func run(t *testing.T, factory ServiceFactory, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JURIS_DATABASE_DRIVER", "sqlite")
	t.Setenv("JURIS_DATABASE_PATH", ":memory:")
	color.NoColor = true

	cmd := NewRootCommand(factory)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(nil)
	assert.Equal(t, "juris", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"route", "harvest", "classify", "score", "purge-duplicates", "migrate", "version"} {
		assert.True(t, names[want], want)
	}
	for _, flag := range []string{"config", "log-level", "output", "verbose", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoute_JSON(t *testing.T) {
	out, err := run(t, nil, "route", "0001234-56.2023.8.13.0024", "-o", "json")
	require.NoError(t, err)

	var got judiciary.Route
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "TJMG", got.Court)
	assert.False(t, got.Fallback)
	assert.Contains(t, got.Endpoint, "api_publica_tjmg")
}

func TestRoute_Table(t *testing.T) {
	out, err := run(t, nil, "route", "123", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "COURT")
	assert.Contains(t, out, "TJSP")
	assert.Contains(t, out, "true")
}

func TestHarvest_ClassifiesAndReleases(t *testing.T) {
	h := &harness{svc: &Services{
		Harvester:  &fakeHarvester{res: &harvest.CloneResult{Success: true, Court: "TJSP", Message: "2 novos, 1 com teor completo."}},
		Classifier: &fakeClassifier{},
	}}

	out, err := run(t, h.factory, "harvest", "0001234-56.2023.8.26.0100", "--classify", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"message": "2 novos, 1 com teor completo."`)
	assert.Contains(t, out, `"updated": 3`)
	assert.Equal(t, "0001234-56.2023.8.26.0100", h.svc.Harvester.(*fakeHarvester).caseID)
	assert.Equal(t, 1, h.built)
	assert.Equal(t, 1, h.released)
}

func TestHarvest_FailureExitsNonZero(t *testing.T) {
	cls := &fakeClassifier{}
	h := &harness{svc: &Services{
		Harvester:  &fakeHarvester{res: &harvest.CloneResult{Message: "Nenhum processo encontrado no TJSP.", Failure: harvest.FailureNotFound}},
		Classifier: cls,
	}}

	out, err := run(t, h.factory, "harvest", "0001234-56.2023.8.26.0100", "--classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nenhum processo encontrado")
	assert.Contains(t, out, "false")
	assert.Zero(t, cls.calls)
}

func TestClassify(t *testing.T) {
	h := &harness{svc: &Services{Classifier: &fakeClassifier{}}}
	out, err := run(t, h.factory, "classify", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "SCANNED")
	assert.Contains(t, out, "4")
}

func TestScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inicial.md")
	require.NoError(t, os.WriteFile(path, []byte("# Ação de cobrança"), 0o600))
	scorer := &fakeScorer{}
	h := &harness{svc: &Services{Scorer: scorer}}

	out, err := run(t, h.factory, "score", "7", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "Juízo da 1ª Vara Cível: Cobrança (82.5%)\n", out)
	assert.Equal(t, "inicial.md", scorer.got.Filename)
	assert.Equal(t, "# Ação de cobrança", string(scorer.got.Data))

	out, err = run(t, h.factory, "score", "7", "--file", path, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Dano Moral")
	assert.Contains(t, out, "41.0%")
}

func TestScore_Errors(t *testing.T) {
	h := &harness{svc: &Services{Scorer: &fakeScorer{}}}
	path := filepath.Join(t.TempDir(), "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := run(t, h.factory, "score", "abc", "--file", path)
	assert.True(t, errors.IsValidation(err))

	_, err = run(t, h.factory, "score", "7", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = run(t, h.factory, "score", "404", "--file", path)
	assert.True(t, errors.IsNotFound(err))

	_, err = run(t, h.factory, "score", "7")
	assert.Error(t, err, "--file is required")
}

func TestPurgeDuplicates(t *testing.T) {
	h := &harness{svc: &Services{Purger: fakePurger{}}}
	out, err := run(t, h.factory, "purge-duplicates")
	require.NoError(t, err)
	assert.Equal(t, "10 records before, 7 after, 3 removed\n", out)
}

func TestMigrate(t *testing.T) {
	m := &fakeMigrator{}
	h := &harness{svc: &Services{Migrator: m}}

	out, err := run(t, h.factory, "migrate")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ups)
	assert.Contains(t, out, "schema version 1")

	out, err = run(t, h.factory, "migrate", "down", "--steps", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.downs)
	assert.Contains(t, out, "schema version 0")

	_, err = run(t, h.factory, "migrate", "sideways")
	assert.Error(t, err)
}

func TestCommands_NeedFactory(t *testing.T) {
	_, err := run(t, nil, "classify")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	h := &harness{svc: &Services{}}
	_, err = run(t, h.factory, "purge-duplicates")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestVersion_SkipsConfig(t *testing.T) {
	t.Setenv("JURIS_DATABASE_DRIVER", "oracle")
	cmd := NewRootCommand(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "juris dev")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JURIS_DATABASE_DRIVER", "oracle")
	cmd := NewRootCommand(nil)
	cmd.SetArgs([]string{"route", "123"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

//Personal.AI order the ending
