package models

// RawQuizItem is one multiple-choice item as the model returned it.
// Nothing about it is trusted until the extractor has looked at it.
type RawQuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is an extracted item. Answer keeps the model's answer verbatim,
// even when it matched no option or several.
type Question struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
	Answer  string   `json:"answer,omitempty"`
}

// CorrectCount returns how many options are flagged correct.
func (q Question) CorrectCount() int {
	n := 0
	for _, o := range q.Options {
		if o.Correct {
			n++
		}
	}
	return n
}

// Raw converts a question back to the wire shape served by the
// generate-quiz endpoint. Questions built by hand without an Answer fall
// back to the first correct option.
func (q Question) Raw() RawQuizItem {
	item := RawQuizItem{Question: q.Text, Options: make([]string, len(q.Options)), Answer: q.Answer}
	for i, o := range q.Options {
		item.Options[i] = o.Text
		if o.Correct && item.Answer == "" {
			item.Answer = o.Text
		}
	}
	return item
}

type GenerateQuizRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
	Count *int   `json:"count,omitempty"`
}

type GenerateQuizResponse struct {
	Quiz []RawQuizItem `json:"quiz"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
