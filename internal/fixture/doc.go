// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fixture is a local stand-in for the Assistant Backend. It replays
// scripted answers so the clients can be driven without the retrieval
// service.
//
// Endpoints:
//   - POST /api/chat/stream - NDJSON records, one flush per record
//   - POST /api/chat        - the whole answer as one JSON body
//   - GET  /api/health      - {"status": "ok"}
//
// A script is a JSON array of entries. The first entry whose match text
// occurs in the query (and whose regulation, if any, equals the request
// filter) answers it. When a script file is given it is reloaded on change.
package fixture
