package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	admissionregistrationv1 "k8s.io/api/admissionregistration/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func ingress(namespace, name string, finalizers ...string) *networkingv1.Ingress {
	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Namespace:  namespace,
			Name:       name,
			Finalizers: finalizers,
		},
	}
}

func TestDeleteValidatingWebhook(t *testing.T) {
	t.Parallel()
	clientset := fake.NewClientset(&admissionregistrationv1.ValidatingWebhookConfiguration{
		ObjectMeta: metav1.ObjectMeta{Name: LoadBalancerWebhookName},
	})
	client := NewClientFromClientset(clientset)

	require.NoError(t, client.DeleteValidatingWebhook(context.Background(), LoadBalancerWebhookName))

	_, err := clientset.AdmissionregistrationV1().ValidatingWebhookConfigurations().
		Get(context.Background(), LoadBalancerWebhookName, metav1.GetOptions{})
	assert.Error(t, err, "webhook configuration should be gone")
}

func TestDeleteValidatingWebhookAlreadyGone(t *testing.T) {
	t.Parallel()
	client := NewClientFromClientset(fake.NewClientset())

	require.NoError(t, client.DeleteValidatingWebhook(context.Background(), LoadBalancerWebhookName))
}

func TestStripIngressFinalizers(t *testing.T) {
	t.Parallel()
	clientset := fake.NewClientset(
		ingress("default", "demo-app", "ingress.k8s.aws/resources"),
		ingress("other", "clean"),
	)
	client := NewClientFromClientset(clientset)

	patched, err := client.StripIngressFinalizers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, patched, "only ingresses with finalizers are patched")

	got, err := clientset.NetworkingV1().Ingresses("default").
		Get(context.Background(), "demo-app", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Finalizers)
}

func TestStripIngressFinalizersNoIngresses(t *testing.T) {
	t.Parallel()
	client := NewClientFromClientset(fake.NewClientset())

	patched, err := client.StripIngressFinalizers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, patched)
}
