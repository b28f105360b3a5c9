package models

// Form is one row of the form catalog sheet (columns A:C). A form is a
// style or register of expression that text can be translated between.
type Form struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// PromptTemplate is one row of the prompt sheet (columns A:D).
// Text may contain {{sourceForm}}, {{targetForm}}, {{sourceDescription}},
// {{targetDescription}} and {{inputText}} placeholders.
type PromptTemplate struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Data    string `json:"data,omitempty"`
	Version string `json:"version,omitempty"`
}

// HistoryEntry is one row of the history sheet (columns A:I). Timestamp
// holds the raw sheet text; several textual formats are accepted, so it is
// parsed on demand rather than eagerly.
type HistoryEntry struct {
	ID           string `json:"id"`
	Stars        int    `json:"stars_count"`
	SourceForm   string `json:"source_form"`
	SourceFormID string `json:"source_form_id,omitempty"`
	SourceText   string `json:"source_text"`
	TargetForm   string `json:"target_form"`
	TargetFormID string `json:"target_form_id,omitempty"`
	TargetText   string `json:"target_text"`
	Timestamp    string `json:"datetime"`
}

// Interest kinds tracked in the interest sheet.
const (
	InterestImages   = "images"
	InterestWebsites = "websites"
)

// TranslateRequest is the body of POST /api/v1/translate.
type TranslateRequest struct {
	SourceForm string `json:"sourceForm"`
	TargetForm string `json:"targetForm"`
	InputText  string `json:"inputText"`
}

// TranslateResponse is the result of a translation. Message is set when
// the request short-circuited (identical source and target forms).
type TranslateResponse struct {
	ID             string `json:"id,omitempty"`
	TranslatedText string `json:"translatedText"`
	SourceForm     string `json:"sourceForm"`
	TargetForm     string `json:"targetForm"`
	OriginalText   string `json:"originalText"`
	Message        string `json:"message,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// AddFormRequest is the body of POST /api/v1/forms.
type AddFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// ListFormsResponse is the response of GET /api/v1/forms.
type ListFormsResponse struct {
	Forms []Form `json:"forms"`
	Count int    `json:"count"`
}

// ListHistoryResponse is the response of GET /api/v1/history.
type ListHistoryResponse struct {
	History []*HistoryEntry `json:"history"`
	Count   int             `json:"count"`
}

// StarResponse reports the star count after an increment or decrement.
type StarResponse struct {
	ID    string `json:"id"`
	Stars int    `json:"stars_count"`
}

// InterestResponse reports an interest counter value.
type InterestResponse struct {
	Kind    string `json:"kind"`
	Counter int    `json:"counter"`
}
