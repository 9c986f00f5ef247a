// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// SchemaVersion is stored in the metadata table.
const SchemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS entries (
    id                TEXT PRIMARY KEY,
    session_id        TEXT NOT NULL,
    patient_mrn       TEXT NOT NULL,
    query             TEXT NOT NULL,
    requested_mode    TEXT,             -- NULL when the server default was used
    response          TEXT NOT NULL,
    conversation_id   TEXT,
    trace_id          TEXT,
    llm_mode          TEXT,
    inference_time_ms REAL,
    elapsed_ms        INTEGER NOT NULL,
    created_at        INTEGER NOT NULL  -- Unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_patient ON entries(patient_mrn);
`
