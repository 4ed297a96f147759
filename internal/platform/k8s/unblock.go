package k8s

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// LoadBalancerWebhookName is the validating webhook configuration the AWS
// Load Balancer Controller installs. If the controller is already gone it
// can no longer answer admission calls, and deletions of the objects it
// watches hang until the webhook is removed.
const LoadBalancerWebhookName = "aws-load-balancer-webhook"

// stripFinalizersPatch clears all finalizer metadata from an object.
var stripFinalizersPatch = []byte(`{"metadata":{"finalizers":null}}`)

// DeleteValidatingWebhook removes a validating webhook configuration.
// Absence is success.
func (c *Client) DeleteValidatingWebhook(ctx context.Context, name string) error {
	err := c.clientset.AdmissionregistrationV1().ValidatingWebhookConfigurations().
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete webhook configuration %s: %w", name, err)
	}
	return nil
}

// StripIngressFinalizers removes finalizer metadata from every ingress in
// the cluster so deletion can proceed without the owning controller.
// Returns the number of ingresses patched.
func (c *Client) StripIngressFinalizers(ctx context.Context) (int, error) {
	ingresses, err := c.clientset.NetworkingV1().Ingresses(metav1.NamespaceAll).
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list ingresses: %w", err)
	}

	patched := 0
	for _, ingress := range ingresses.Items {
		if len(ingress.Finalizers) == 0 {
			continue
		}

		_, err := c.clientset.NetworkingV1().Ingresses(ingress.Namespace).
			Patch(ctx, ingress.Name, types.MergePatchType, stripFinalizersPatch, metav1.PatchOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			return patched, fmt.Errorf("failed to strip finalizers from ingress %s/%s: %w", ingress.Namespace, ingress.Name, err)
		}
		patched++
	}

	return patched, nil
}
