package dto

type ImageHistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ImageChatModel struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type ImageSearchRequest struct {
	Query       string                `json:"query" validate:"required"`
	ChatHistory []ImageHistoryMessage `json:"chatHistory"`
	ChatModel   ImageChatModel        `json:"chatModel"`
	FocusMode   string                `json:"focusMode"`
}

type ImageResult struct {
	ImgSrc string `json:"img_src"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

type ImageSearchResponse struct {
	Images []ImageResult `json:"images"`
}
