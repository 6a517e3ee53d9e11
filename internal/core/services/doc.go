// Package services contains the core business logic implementations.
// Services implement the driving ports and depend on the driven ports,
// keeping the retrieval pipeline independent of any concrete crawler,
// embedder, vector store or language model.
package services
