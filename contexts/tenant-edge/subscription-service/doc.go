// Package subscriptionservice contains tenant billing/entitlement state.
//
// Status changes are the subsystem's canonical outbox producer: the
// subscription row and its TenantSubscriptionChanged outbox entry commit in
// one transaction, after which edge nodes are notified best-effort.
package subscriptionservice
