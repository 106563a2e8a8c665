package sitelist

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/blackbird/internal/model"
)

// document is a site list in canonical form together with its typed view.
type document struct {
	canonical []byte
	hash      string
	sites     []model.Site
}

// siteFields mirrors model.Site with pointer fields so that a missing
// match field can be told apart from a zero value.
type siteFields struct {
	Name      *string  `json:"name"`
	URICheck  *string  `json:"uri_check"`
	URIPretty string   `json:"uri_pretty"`
	ECode     *int     `json:"e_code"`
	EString   *string  `json:"e_string"`
	MCode     *int     `json:"m_code"`
	MString   *string  `json:"m_string"`
	Known     []string `json:"known"`
	Category  string   `json:"cat"`
}

// parseDocument validates data and returns its canonical form.
func parseDocument(data []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, parseError("not JSON: %v", err)
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, parseError("top level is not an object")
	}

	var typed struct {
		Sites *[]siteFields `json:"sites"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, parseError("%v", err)
	}
	if typed.Sites == nil {
		return nil, parseError("missing sites array")
	}

	sites := make([]model.Site, 0, len(*typed.Sites))
	for i, sf := range *typed.Sites {
		site, err := sf.toSite(i)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	canonical, err := canonicalize(generic, true)
	if err != nil {
		return nil, err
	}
	compact, err := canonicalize(generic, false)
	if err != nil {
		return nil, err
	}

	return &document{
		canonical: canonical,
		hash:      hashBytes(compact),
		sites:     sites,
	}, nil
}

func (sf siteFields) toSite(index int) (model.Site, error) {
	missing := ""
	switch {
	case sf.Name == nil:
		missing = "name"
	case sf.URICheck == nil:
		missing = "uri_check"
	case sf.EString == nil:
		missing = "e_string"
	case sf.ECode == nil:
		missing = "e_code"
	case sf.MString == nil:
		missing = "m_string"
	case sf.MCode == nil:
		missing = "m_code"
	}
	if missing != "" {
		return model.Site{}, parseError("site %d: missing %s", index, missing)
	}

	return model.Site{
		Name:      *sf.Name,
		URICheck:  *sf.URICheck,
		URIPretty: sf.URIPretty,
		ECode:     *sf.ECode,
		EString:   *sf.EString,
		MCode:     *sf.MCode,
		MString:   *sf.MString,
		Known:     sf.Known,
		Category:  sf.Category,
	}, nil
}

// canonicalize encodes v with sorted keys and no HTML escaping. The compact
// form is hashed; the pretty form, indented by 4 spaces, is written to disk.
func canonicalize(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "    ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, parseError("%v", err)
	}
	return buf.Bytes(), nil
}

func hashBytes(b []byte) string {
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
