package dto

// ChatTurn is one prior exchange sent by the client
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatbotRequest asks the assistant a question
type ChatbotRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}

// ChatbotResponse is the assistant's reply
type ChatbotResponse struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}
