// Package pushnotifier contains the Meridian tenant push notifier and the
// edge node registry it fans out to.
//
// Edge deployments register a callback URL and receive signed webhooks when
// tenant subscription state changes. Fan-out is best-effort with
// independent per-node failure; nothing here is transactional.
package pushnotifier
