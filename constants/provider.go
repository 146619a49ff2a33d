package constants

// Selector names accepted by the extractor factory.
const (
	SelectorOCR            = "ocr"
	SelectorCloud          = "llm-cloud"
	SelectorChatCompletion = "chat-completion"
	SelectorMock           = "mock"
)

// Provider names reported by extractors and stored on metrics records.
const (
	ProviderTesseractOCR = "tesseract_ocr"
	ProviderLlamaCloud   = "llama_cloud"
	ProviderOpenAI       = "openai"
	ProviderMock         = "mock"
)

// SelectorPriority is the order used to recommend a provider.
var SelectorPriority = []string{SelectorCloud, SelectorChatCompletion, SelectorOCR, SelectorMock}
