package rag

// Chunk 文档分块。Embedding为空表示尚未向量化，检索时会被跳过，
// 但仍是合法实体（例如刚分块还没进嵌入队列）。
type Chunk struct {
	ChunkID    string                 `json:"chunk_id"`
	DocumentID string                 `json:"document_id"`
	Text       string                 `json:"text"`
	Embedding  []float32              `json:"embedding,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Source 答案引用的来源信息
type Source struct {
	ChunkID     string                 `json:"chunk_id"`
	DocumentID  string                 `json:"document_id"`
	TextPreview string                 `json:"text_preview"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// AnswerResult RAG查询结果
type AnswerResult struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// ChatMessage 发送给生成服务的消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// 流水线阶段名，用于错误标记与日志
const (
	StageInit       = "INIT"
	StageEmbedQuery = "EMBED_QUERY"
	StageRetrieve   = "RETRIEVE"
	StageSynthesize = "SYNTHESIZE"
	StageDone       = "DONE"
)
