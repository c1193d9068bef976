// Package pageinfo extracts structured metadata (title, description,
// OpenGraph, Schema.org JSON-LD, links and plain text) from untrusted HTML
// documents, and retrieves those documents over HTTP under strict safety
// constraints: SSRF checks at every redirect hop, a pinned resolve-then-dial
// connection, an aggregate timeout and a streaming body size cap.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package pageinfo

// Version is reported in the default User-Agent.
const Version = "0.3.0"
