package httpserver

import (
	nodeentities "meridian/contexts/tenant-edge/push-notifier/domain/entities"
	nodehttp "meridian/contexts/tenant-edge/push-notifier/transport/http"
	subentities "meridian/contexts/tenant-edge/subscription-service/domain/entities"
	subhttp "meridian/contexts/tenant-edge/subscription-service/transport/http"
)

func nodeResponse(node nodeentities.TenantNode) nodehttp.NodeResponse {
	return nodehttp.NodeResponse{
		ID:          node.NodeID,
		TenantID:    node.TenantID,
		Name:        node.Name,
		CallbackURL: node.CallbackURL,
		IsActive:    node.IsActive,
		CreatedAt:   node.RegisteredAt,
	}
}

func subscriptionResponse(subscription subentities.Subscription) subhttp.SubscriptionResponse {
	return subhttp.SubscriptionResponse{
		ID:        subscription.ID,
		TenantID:  subscription.TenantID,
		Plan:      subscription.Plan,
		Status:    string(subscription.Status),
		StartAt:   subscription.StartAt,
		EndAt:     subscription.EndAt,
		RenewalAt: subscription.RenewalAt,
		UpdatedAt: subscription.UpdatedAt,
	}
}
