package domain

type RetrievedChunk struct {
	Content    string  `json:"content"`
	SourceURL  string  `json:"source_url"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

type IngestResult struct {
	SessionID   string `json:"session_id"`
	ChunksCount int    `json:"chunks_count"`
}

type ChatAnswer struct {
	Answer              string `json:"answer"`
	RelevantChunksCount int    `json:"relevant_chunks_count"`
}
