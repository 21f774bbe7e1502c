package kserve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"model-export-pipeline/internal/config"
	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

var inferenceServiceGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

type deployClient struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
}

// NewDeployClient creates the KServe rollout adapter.
func NewDeployClient(cfg *config.KubernetesConfig) (ports.DeployClient, error) {
	if !cfg.Enabled {
		return &deployClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	defaultNS := cfg.DefaultNS
	if defaultNS == "" {
		defaultNS = "model-serving"
	}

	return &deployClient{
		client:    client,
		enabled:   true,
		defaultNS: defaultNS,
	}, nil
}

func (c *deployClient) IsAvailable() bool {
	return c.enabled
}

// Deploy creates or replaces the InferenceService for the build's variant.
// One InferenceService per variant; a new build of the same variant rolls
// the existing service forward to the new image.
func (c *deployClient) Deploy(ctx context.Context, build *domain.Build) (*ports.Deployment, error) {
	name := fmt.Sprintf("segment-%s", build.Variant)
	obj := c.buildInferenceServiceCR(name, build)

	res := c.client.Resource(inferenceServiceGVR).Namespace(c.defaultNS)

	created, err := res.Create(ctx, obj, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		existing, getErr := res.Get(ctx, name, metav1.GetOptions{})
		if getErr != nil {
			return nil, fmt.Errorf("get inferenceservice: %w", getErr)
		}
		obj.SetResourceVersion(existing.GetResourceVersion())
		created, err = res.Update(ctx, obj, metav1.UpdateOptions{})
	}
	if err != nil {
		return nil, fmt.Errorf("apply inferenceservice: %w", err)
	}

	return &ports.Deployment{
		ExternalID: string(created.GetUID()),
		Name:       name,
		Namespace:  c.defaultNS,
	}, nil
}

// Undeploy removes the InferenceService for the build's variant. A service
// that is already gone counts as removed.
func (c *deployClient) Undeploy(ctx context.Context, build *domain.Build) error {
	name := fmt.Sprintf("segment-%s", build.Variant)

	err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.defaultNS).
		Delete(ctx, name, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete inferenceservice: %w", err)
	}
	return nil
}

func (c *deployClient) buildInferenceServiceCR(name string, build *domain.Build) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "serving.kserve.io/v1beta1",
			"kind":       "InferenceService",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": c.defaultNS,
				"labels": map[string]interface{}{
					"app.kubernetes.io/managed-by": "model-export-pipeline",
					"model-export-pipeline/variant": string(build.Variant),
					"model-export-pipeline/build":   build.ID.String(),
				},
			},
			"spec": map[string]interface{}{
				"predictor": map[string]interface{}{
					"containers": []interface{}{
						map[string]interface{}{
							"name":  "kserve-container",
							"image": build.ImageRef,
						},
					},
				},
			},
		},
	}
}
