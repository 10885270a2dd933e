// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package retrieval provides the retrieval-augmented generation layer:
// document loading, splitting, embedding, vector search and retrieval.
//
// # Pipeline
//
// Documents flow through the usual two phases. Indexing loads and splits
// source material, embeds the chunks and stores them:
//
//	loader := retrieval.NewDirectoryLoader("docs", "*.md")
//	docs, err := loader.Load(ctx)
//	if err != nil { ... }
//
//	splitter := retrieval.NewRecursiveSplitter(
//		retrieval.WithChunkSize(800),
//		retrieval.WithChunkOverlap(100),
//	)
//	chunks := splitter.SplitDocuments(docs)
//
//	embedder, err := retrieval.NewGeminiEmbedder(ctx, "", "")
//	if err != nil { ... }
//	store := retrieval.NewInMemoryVectorStore(embedder)
//	if err := store.AddDocuments(ctx, chunks); err != nil { ... }
//
// Retrieval embeds the query and returns the most similar chunks, optionally
// restricted by a metadata filter:
//
//	retriever := retrieval.NewVectorRetriever(store,
//		retrieval.WithTopK(4),
//		retrieval.WithFilter(map[string]any{"source": "docs/guide.md"}),
//	)
//	results, err := retriever.Retrieve(ctx, "how do agents transfer control?")
//
// [FormatWithCitations] renders the results as a numbered context block so
// the model can cite sources by index.
//
// For agentic RAG, wrap the retriever in a tool with tools.NewRetrieveTool so
// the model decides when to search.
//
// The in-memory vector store is for prototyping and tests; swap in a database
// backed implementation of [types.VectorStore] for production workloads.
package retrieval
