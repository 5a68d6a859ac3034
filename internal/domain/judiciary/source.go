package judiciary

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// CaseSource is the defensive view of one DataJud hit (_source). Every field
// is optional upstream; decoding never fails and missing or oddly-shaped
// fields collapse to zero values.
type CaseSource struct {
	Number    string
	Body      BodyRef
	FiledAt   string
	Subjects  Subjects
	Movements []Movement
}

// BodyRef identifies the adjudicating body (orgaoJulgador) of a hit.
type BodyRef struct {
	// Code is the raw JSON value of orgaoJulgador.codigo. DataJud sends a
	// number; it is echoed back verbatim in the history query.
	Code json.RawMessage
	Name string
}

// HasCode reports whether a usable body code is present.
func (b BodyRef) HasCode() bool {
	c := bytes.TrimSpace(b.Code)
	return len(c) > 0 && !bytes.Equal(c, []byte("null")) && !bytes.Equal(c, []byte(`""`))
}

// CodeString renders the code for logs and events.
func (b BodyRef) CodeString() string {
	var s string
	if err := json.Unmarshal(b.Code, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(b.Code))
}

// Movement is one entry of the procedural log (movimentos).
type Movement struct {
	Name       string
	Timestamp  string
	Complement []string
}

// SubjectShape tags how the upstream assuntos field arrived.
type SubjectShape int

const (
	SubjectsEmpty SubjectShape = iota
	SubjectsSingle
	SubjectsList
)

func (s SubjectShape) String() string {
	switch s {
	case SubjectsSingle:
		return "single"
	case SubjectsList:
		return "list"
	default:
		return "empty"
	}
}

// Subject is one assunto entry.
type Subject struct {
	Name        string
	Description string
}

// Subjects is the normalised assuntos field: empty, a single object, or a
// list of objects.
type Subjects struct {
	Shape SubjectShape
	Items []Subject
}

// Topic returns the name (or description) of the first subject, or
// DefaultTopic when none is usable.
func (s Subjects) Topic() string {
	if len(s.Items) == 0 {
		return DefaultTopic
	}
	first := s.Items[0]
	if t := strings.TrimSpace(first.Name); t != "" {
		return t
	}
	if t := strings.TrimSpace(first.Description); t != "" {
		return t
	}
	return DefaultTopic
}

// NormalizeSubjects resolves the assuntos payload into a Subjects value.
// Nested lists (DataJud occasionally wraps entries twice) are flattened one
// level; non-object entries are dropped.
func NormalizeSubjects(raw json.RawMessage) Subjects {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Subjects{Shape: SubjectsEmpty}
	}
	switch raw[0] {
	case '{':
		if s, ok := decodeSubject(raw); ok {
			return Subjects{Shape: SubjectsSingle, Items: []Subject{s}}
		}
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return Subjects{Shape: SubjectsEmpty}
		}
		items := make([]Subject, 0, len(elems))
		for _, e := range elems {
			e = bytes.TrimSpace(e)
			if len(e) > 0 && e[0] == '[' {
				items = append(items, NormalizeSubjects(e).Items...)
				continue
			}
			if s, ok := decodeSubject(e); ok {
				items = append(items, s)
			}
		}
		if len(items) > 0 {
			return Subjects{Shape: SubjectsList, Items: items}
		}
	}
	return Subjects{Shape: SubjectsEmpty}
}

func decodeSubject(raw json.RawMessage) (Subject, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return Subject{}, false
	}
	return Subject{Name: stringField(obj, "nome"), Description: stringField(obj, "descricao")}, true
}

// DecodeCaseSource decodes one _source object.
func DecodeCaseSource(raw json.RawMessage) CaseSource {
	obj, ok := asObject(raw)
	if !ok {
		return CaseSource{}
	}

	src := CaseSource{
		Number:   stringField(obj, "numeroProcesso"),
		FiledAt:  stringField(obj, "dataAjuizamento"),
		Subjects: NormalizeSubjects(obj["assuntos"]),
	}

	if body, ok := asObject(obj["orgaoJulgador"]); ok {
		src.Body = BodyRef{Code: body["codigo"], Name: stringField(body, "nome")}
	}

	var movs []json.RawMessage
	if err := json.Unmarshal(obj["movimentos"], &movs); err == nil {
		src.Movements = make([]Movement, 0, len(movs))
		for _, m := range movs {
			mo, ok := asObject(m)
			if !ok {
				continue
			}
			mv := Movement{Name: stringField(mo, "nome"), Timestamp: stringField(mo, "dataHora")}
			var comps []json.RawMessage
			if err := json.Unmarshal(mo["complementosTabelados"], &comps); err == nil {
				for _, c := range comps {
					if co, ok := asObject(c); ok {
						mv.Complement = append(mv.Complement, stringField(co, "descricao"))
					}
				}
			}
			src.Movements = append(src.Movements, mv)
		}
	}
	return src
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stringField reads key as a string. Numbers are rendered in decimal; any
// other shape yields "".
func stringField(obj map[string]json.RawMessage, key string) string {
	raw := bytes.TrimSpace(obj[key])
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

//Personal.AI order the ending
