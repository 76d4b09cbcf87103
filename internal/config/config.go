package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig describes one model endpoint (embeddings or chat).
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	TopK            int `yaml:"top_k"`             // final_k
	FetchK          int `yaml:"fetch_k"`           // over-fetch budget for the chunk index
	DocRouteTopN    int `yaml:"doc_route_top_n"`   // candidate documents per query
	DocTextMaxChars int `yaml:"doc_text_max_chars"`
	SnippetMaxChars int `yaml:"snippet_max_chars"`
	VectorDim       int `yaml:"vector_dim"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type PathsConfig struct {
	PDFDir      string `yaml:"pdf_dir"`
	IndexDir    string `yaml:"index_dir"`
	CatalogPath string `yaml:"catalog_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
	RAG      RAGConfig      `yaml:"rag"`
	Chunking ChunkingConfig `yaml:"chunking"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	ChatLLM  LLMConfig      `yaml:"chat_llm"`
	Debug    bool           `yaml:"debug"`
}

// LoadConfig reads the YAML config file, applies environment overrides and
// fills in defaults. A missing file is not an error; env vars and defaults
// are enough to run.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.RAG.TopK = envInt("RAG_TOP_K", c.RAG.TopK)
	c.RAG.FetchK = envInt("CHUNK_FETCH_K", c.RAG.FetchK)
	c.RAG.DocRouteTopN = envInt("DOC_ROUTE_TOP_N", c.RAG.DocRouteTopN)
	c.RAG.DocTextMaxChars = envInt("DOC_TEXT_MAX_CHARS", c.RAG.DocTextMaxChars)
	c.RAG.SnippetMaxChars = envInt("SNIPPET_MAX_CHARS", c.RAG.SnippetMaxChars)
	c.Chunking.Size = envInt("CHUNK_SIZE", c.Chunking.Size)
	c.Chunking.Overlap = envInt("CHUNK_OVERLAP", c.Chunking.Overlap)
	c.Paths.PDFDir = envOr("PDF_DIR", c.Paths.PDFDir)
	c.Paths.IndexDir = envOr("INDEX_DIR", c.Paths.IndexDir)
	c.Paths.CatalogPath = envOr("CATALOG_PATH", c.Paths.CatalogPath)
	c.Server.Addr = envOr("SERVER_ADDR", c.Server.Addr)
	c.EmbedLLM.BaseURL = envOr("OLLAMA_BASE_URL", c.EmbedLLM.BaseURL)
	c.EmbedLLM.Model = envOr("OLLAMA_EMBED_MODEL", c.EmbedLLM.Model)
	c.ChatLLM.BaseURL = envOr("OLLAMA_BASE_URL", c.ChatLLM.BaseURL)
	c.ChatLLM.Model = envOr("OLLAMA_CHAT_MODEL", c.ChatLLM.Model)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Paths.PDFDir == "" {
		c.Paths.PDFDir = "./data/pdfs"
	}
	if c.Paths.IndexDir == "" {
		c.Paths.IndexDir = "./data/index"
	}
	if c.Paths.CatalogPath == "" {
		c.Paths.CatalogPath = "./data/catalog.db"
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 4
	}
	if c.RAG.FetchK <= 0 {
		c.RAG.FetchK = 40
	}
	if c.RAG.DocRouteTopN <= 0 {
		c.RAG.DocRouteTopN = 3
	}
	if c.RAG.DocTextMaxChars <= 0 {
		c.RAG.DocTextMaxChars = 12000
	}
	if c.RAG.SnippetMaxChars <= 0 {
		c.RAG.SnippetMaxChars = 200
	}
	if c.RAG.VectorDim <= 0 {
		c.RAG.VectorDim = 768
	}
	if c.Chunking.Size <= 0 {
		c.Chunking.Size = 800
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		c.Chunking.Overlap = 120
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "ollama"
	}
	if c.EmbedLLM.BaseURL == "" {
		c.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = "nomic-embed-text"
	}
	if c.ChatLLM.Provider == "" {
		c.ChatLLM.Provider = "ollama"
	}
	if c.ChatLLM.BaseURL == "" {
		c.ChatLLM.BaseURL = "http://localhost:11434"
	}
	if c.ChatLLM.Model == "" {
		c.ChatLLM.Model = "llama3.1"
	}
}

func (c *Config) Validate() error {
	if c.RAG.FetchK < c.RAG.TopK {
		return fmt.Errorf("rag.fetch_k (%d) must be >= rag.top_k (%d)", c.RAG.FetchK, c.RAG.TopK)
	}
	if c.EmbedLLM.Provider != "ollama" && c.EmbedLLM.Provider != "openai" {
		return fmt.Errorf("embed_llm.provider must be ollama or openai, got %q", c.EmbedLLM.Provider)
	}
	if c.ChatLLM.Provider != "ollama" && c.ChatLLM.Provider != "openai" {
		return fmt.Errorf("chat_llm.provider must be ollama or openai, got %q", c.ChatLLM.Provider)
	}
	if c.EmbedLLM.Provider == "openai" && c.EmbedLLM.Key == "" {
		return fmt.Errorf("embed_llm.key is required for provider openai")
	}
	if c.ChatLLM.Provider == "openai" && c.ChatLLM.Key == "" {
		return fmt.Errorf("chat_llm.key is required for provider openai")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
