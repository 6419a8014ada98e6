// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages
// and the retrieval metadata attached to answers.
//
// # Key Types
//
//   - Conversation: ordered message list of one session
//   - Message: single message with role, content and optional Snapshot
//   - Snapshot: confidence, references and citation graph of one answer
//   - Reference: retrieved regulatory passage with attribution
//   - Graph: citation nodes and edges, treated as display data
//   - Filter: regulation filter (All, GDPR, AI Act)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("What is a high-risk AI system?")
//	msg := conv.AddAssistantMessage()
//	msg.Attach(model.NewSnapshot(87, refs, graph))
//	msg.AppendToken("Under Article 6 ...")
//	msg.FinalizeStream(nil)
package model
