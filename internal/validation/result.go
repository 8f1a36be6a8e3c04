package validation

// Severity classifies a validation message. Only errors block export;
// warnings and infos are always advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Message is a single validation finding. Code is stable across releases;
// Field is the dotted path of the offending form input (German field names,
// e.g. "verkaeufer.plz" or "positionen.2.menge") so the UI can focus it;
// BT references the EN16931 business term where one applies.
type Message struct {
	Code     string   `json:"code"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	BT       string   `json:"bt,omitempty"`
}

// Result is the full validation report. Valid is true iff Errors is empty.
type Result struct {
	Valid    bool      `json:"valid"`
	Errors   []Message `json:"errors"`
	Warnings []Message `json:"warnings"`
	Infos    []Message `json:"infos"`
}

func newResult() *Result {
	return &Result{
		Errors:   []Message{},
		Warnings: []Message{},
		Infos:    []Message{},
	}
}

func (r *Result) addError(code, field, bt, msg string) {
	r.Errors = append(r.Errors, Message{Code: code, Field: field, Message: msg, Severity: SeverityError, BT: bt})
}

func (r *Result) addWarning(code, field, bt, msg string) {
	r.Warnings = append(r.Warnings, Message{Code: code, Field: field, Message: msg, Severity: SeverityWarning, BT: bt})
}

func (r *Result) addInfo(code, field, bt, msg string) {
	r.Infos = append(r.Infos, Message{Code: code, Field: field, Message: msg, Severity: SeverityInfo, BT: bt})
}

func (r *Result) finish() *Result {
	r.Valid = len(r.Errors) == 0
	return r
}
