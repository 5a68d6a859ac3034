package judiciary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fragment(seed string, n int) string {
	return strings.Repeat(seed, n)
}

func TestMineDecisionText_NoMovements(t *testing.T) {
	text, ok := MineDecisionText(CaseSource{})
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestMineDecisionText_NoQualifyingMovement(t *testing.T) {
	src := CaseSource{Movements: []Movement{
		{Name: "Juntada de Petição", Timestamp: "2024-01-10T10:00:00", Complement: []string{fragment("x", 80)}},
		{Name: "Conclusos para decisão", Timestamp: "2024-01-11T10:00:00", Complement: []string{"curto demais"}},
	}}

	text, ok := MineDecisionText(src)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestMineDecisionText_FormatsFragment(t *testing.T) {
	long := "Julgo procedente o pedido para condenar a ré ao pagamento de danos morais."
	src := CaseSource{Movements: []Movement{
		{Name: "Julgamento", Timestamp: "2024-02-03T14:22:10.000Z", Complement: []string{long}},
	}}

	text, ok := MineDecisionText(src)
	assert.True(t, ok)
	assert.Equal(t, " [2024-02-03] "+long+" | ", text)
}

func TestMineDecisionText_KeywordMatchIsCaseInsensitive(t *testing.T) {
	src := CaseSource{Movements: []Movement{
		{Name: "SENTENÇA PROFERIDA", Timestamp: "2024-02-03", Complement: []string{fragment("a", 60)}},
	}}
	_, ok := MineDecisionText(src)
	assert.True(t, ok)
}

func TestMineDecisionText_FragmentLengthCountsRunes(t *testing.T) {
	// 50 multi-byte runes is not enough, 51 is.
	src := CaseSource{Movements: []Movement{
		{Name: "Decisão", Timestamp: "2024-02-03", Complement: []string{fragment("ç", 50)}},
	}}
	_, ok := MineDecisionText(src)
	assert.False(t, ok)

	src.Movements[0].Complement = []string{fragment("ç", 51)}
	_, ok = MineDecisionText(src)
	assert.True(t, ok)
}

func TestMineDecisionText_SoftBudget(t *testing.T) {
	a, b, c := fragment("a", 60), fragment("b", 60), fragment("c", 60)
	src := CaseSource{Movements: []Movement{
		{Name: "Despacho", Timestamp: "2024-01-01", Complement: []string{a}},
		{Name: "Decisão interlocutória", Timestamp: "2024-01-02", Complement: []string{b}},
		{Name: "Sentença", Timestamp: "2024-01-03", Complement: []string{c}},
	}}

	text, ok := MineDecisionText(src)
	assert.True(t, ok)
	assert.Contains(t, text, a)
	assert.Contains(t, text, b)
	assert.NotContains(t, text, c)
}

func TestMineDecisionText_CurrentMovementAppendedInFull(t *testing.T) {
	a, b, c := fragment("a", 90), fragment("b", 90), fragment("c", 90)
	src := CaseSource{Movements: []Movement{
		{Name: "Mérito", Timestamp: "2024-01-01", Complement: []string{a, b, c}},
		{Name: "Julgamento", Timestamp: "2024-01-02", Complement: []string{fragment("d", 90)}},
	}}

	text, ok := MineDecisionText(src)
	assert.True(t, ok)
	assert.Contains(t, text, a)
	assert.Contains(t, text, b)
	assert.Contains(t, text, c)
	assert.NotContains(t, text, "ddd")
}

//Personal.AI order the ending
