package assets

// Names of the embedded assets.
const (
	ReportStyle      = "report"
	DocumentTemplate = "report"
	HeaderTemplate   = "header"
	FooterTemplate   = "footer"
)

var defaultLoader = NewEmbeddedLoader()

// Bundle is the full set of assets one report needs.
type Bundle struct {
	Style    string
	Document string
	Header   string
	Footer   string
}

// LoadBundle loads every asset a report needs from l.
func LoadBundle(l AssetLoader) (*Bundle, error) {
	style, err := l.LoadStyle(ReportStyle)
	if err != nil {
		return nil, err
	}
	b := &Bundle{Style: style}
	for _, t := range []struct {
		name string
		dst  *string
	}{
		{DocumentTemplate, &b.Document},
		{HeaderTemplate, &b.Header},
		{FooterTemplate, &b.Footer},
	} {
		content, err := l.LoadTemplate(t.name)
		if err != nil {
			return nil, err
		}
		*t.dst = content
	}
	return b, nil
}

// DefaultBundle loads the embedded report assets.
func DefaultBundle() (*Bundle, error) {
	return LoadBundle(defaultLoader)
}
