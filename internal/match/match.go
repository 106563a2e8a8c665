// Package match decides whether a probe response means the account exists.
package match

import (
	"strings"

	"github.com/nao1215/blackbird/internal/model"
)

// Classify applies the site's match rules to resp.
//
// A nil response is ERROR. When the body contains e_string and the status
// equals e_code, the account is FOUND unless the response also matches the
// "missing" rule (body contains m_string or status equals m_code), in which
// case the outcome stays NONE. Everything else is NOT_FOUND.
func Classify(site model.Site, resp *model.RawResponse) model.Status {
	if resp == nil {
		return model.StatusError
	}

	if strings.Contains(resp.Body, site.EString) && resp.StatusCode == site.ECode {
		if !strings.Contains(resp.Body, site.MString) && resp.StatusCode != site.MCode {
			return model.StatusFound
		}
		return model.StatusNone
	}
	return model.StatusNotFound
}
