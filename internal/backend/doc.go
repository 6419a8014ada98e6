// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Assistant Backend.
//
// The backend answers questions about the EU AI Act and the GDPR. The
// streaming endpoint returns newline-delimited JSON records, each with a
// "type" of metadata, token or error.
//
// # Key Types
//
//   - Client: StreamChat, Chat and CheckHealth
//   - Decoder: reassembles NDJSON records split across reads
//   - Event: one decoded stream record
//   - ClientError: typed error with ErrorType and Unwrap support
//
// # Usage
//
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    BaseURL: "http://localhost:8000",
//	    Logger:  logger,
//	})
//	err := client.StreamChat(ctx, backend.NewChatRequest("What is Article 5?", model.FilterGDPR),
//	    func(ev backend.Event) {
//	        switch ev.Type {
//	        case backend.EventMetadata:
//	            // references and graph arrive before the first token
//	        case backend.EventToken:
//	            fmt.Print(ev.Content)
//	        }
//	    })
//
// Streams are one-shot. A non-2xx status or transport failure is returned
// as a *ClientError and nothing is retried.
package backend
