// Package sync contains the synchronization bounded context.
// It reconciles local stock and catalog state against external commerce
// platforms: a legacy shop database pulled incrementally by external id,
// and REST storefronts pulled by time window.
//
// Key concepts:
//   - Watermark: finds the safe resume point for incremental pulls by
//     correlating recently imported natural keys against the source
//   - LegacyGateway: port to the legacy shop database
//   - StorefrontPlatform: port to a REST storefront
//   - Run / FailureLog: persisted per-run summaries and per-row failures
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package sync
