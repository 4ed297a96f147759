// Package helm uninstalls in-cluster releases ahead of their Terraform
// modules. Karpenter's release in particular must be gone before its IAM
// bindings are revoked, or the uninstall hangs waiting on permissions the
// destroy already removed.
package helm

import (
	"errors"
	"fmt"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// Client performs Helm release operations against one namespace.
type Client struct {
	actionConfig *action.Configuration
}

// NewClient creates a Helm client for the namespace using the standard
// kubeconfig resolution (KUBECONFIG, then ~/.kube/config).
func NewClient(namespace string) (*Client, error) {
	settings := cli.New()
	settings.SetNamespace(namespace)

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"), func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm configuration: %w", err)
	}

	return &Client{actionConfig: actionConfig}, nil
}

// Uninstall removes a release and waits for its resources to go away.
// A release that was never installed is success.
func (c *Client) Uninstall(releaseName string) error {
	uninstall := action.NewUninstall(c.actionConfig)
	uninstall.Wait = true
	uninstall.Timeout = 5 * time.Minute

	_, err := uninstall.Run(releaseName)
	if err != nil && !errors.Is(err, driver.ErrReleaseNotFound) {
		return fmt.Errorf("failed to uninstall release %s: %w", releaseName, err)
	}
	return nil
}
