// Package utils provides small conversion helpers shared by the provider clients.
// They normalize loosely typed API payloads (JSON numbers, ids that are sometimes
// strings, ISO dates) into the shapes the reconciliation engine expects.
package utils
