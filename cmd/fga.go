// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/openfga/go-sdk/client"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/nexus-app/workspace-service/internal/authorization"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

const (
	StoreName = "workspace-service"

	configMapStoreKey = "OPENFGA_STORE_ID"
	configMapModelKey = "OPENFGA_AUTHORIZATION_MODEL_ID"
)

type fgaModelOptions struct {
	apiURL     string
	apiToken   string
	storeID    string
	verbose    bool
	configMap  string
	kubeconfig string
}

// fgaModelResult is what the command reports once the model is written.
type fgaModelResult struct {
	StoreID      string `json:"store_id"`
	ModelID      string `json:"model_id"`
	StoreCreated bool   `json:"store_created"`
	ConfigMap    string `json:"configmap,omitempty"`
}

var fgaOpts fgaModelOptions

var createFgaModelCmd = &cobra.Command{
	Use:   "create-fga-model",
	Short: "Writes the workspace authorization model to openfga",
	Long: `Writes the workspace authorization model (owner, admin and member relations) to openfga,
creating the store when none is given. The resulting ids can be synced to a Kubernetes ConfigMap.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := writeFgaModel(cmd.Context(), fgaOpts)
		if err != nil {
			return err
		}

		if fgaOpts.configMap != "" {
			clientset, err := kubeClientset(fgaOpts.kubeconfig)
			if err != nil {
				return err
			}

			if err := syncConfigMap(cmd.Context(), clientset, fgaOpts.configMap, result.StoreID, result.ModelID); err != nil {
				return fmt.Errorf("failed to update configmap: %w", err)
			}

			result.ConfigMap = fgaOpts.configMap
		}

		return render(cmd.OutOrStdout(), result, func(w *tabwriter.Writer) {
			row(w, "STORE", "MODEL", "STORE CREATED", "CONFIGMAP")
			row(w, result.StoreID, result.ModelID, result.StoreCreated, orDash(result.ConfigMap))
		})
	},
}

func init() {
	rootCmd.AddCommand(createFgaModelCmd)

	createFgaModelCmd.Flags().StringVar(&fgaOpts.apiURL, "fga-api-url", "", "The openfga API URL")
	createFgaModelCmd.Flags().StringVar(&fgaOpts.apiToken, "fga-api-token", "", "The openfga API token")
	createFgaModelCmd.Flags().StringVar(&fgaOpts.storeID, "fga-store-id", "", "The openfga store to create the model in, if empty one will be created")
	createFgaModelCmd.Flags().BoolVarP(&fgaOpts.verbose, "verbose", "v", false, "Enable verbose logging")
	createFgaModelCmd.Flags().StringVar(&fgaOpts.configMap, "store-k8s-configmap-resource", "", "The configmap resource to store the FGA Store ID and Model ID, format: namespace/name")
	createFgaModelCmd.Flags().StringVar(&fgaOpts.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (optional, defaults to in-cluster config)")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-url")
	_ = createFgaModelCmd.MarkFlagRequired("fga-api-token")
}

func writeFgaModel(ctx context.Context, opts fgaModelOptions) (*fgaModelResult, error) {
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor(StoreName, logger)

	u, err := url.Parse(opts.apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid openfga API URL %q", opts.apiURL)
	}

	fgaClient, err := openfga.NewClient(
		&openfga.Config{
			ApiScheme: u.Scheme,
			ApiHost:   u.Host,
			StoreID:   opts.storeID,
			ApiToken:  opts.apiToken,
			Debug:     opts.verbose,
			Tracer:    tracer,
			Monitor:   monitor,
			Logger:    logger,
		},
	)
	if err != nil {
		return nil, err
	}

	result := &fgaModelResult{StoreID: opts.storeID}

	if result.StoreID == "" {
		if result.StoreID, err = fgaClient.CreateStore(ctx, StoreName); err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
		result.StoreCreated = true

		if err := fgaClient.SetStoreID(ctx, result.StoreID); err != nil {
			return nil, fmt.Errorf("failed to select store: %w", err)
		}
	}

	model, err := authorization.NewAuthorizationModelProvider("v0").GetModel()
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	result.ModelID, err = fgaClient.WriteModel(
		ctx,
		&client.ClientWriteAuthorizationModelRequest{
			TypeDefinitions: model.TypeDefinitions,
			SchemaVersion:   model.SchemaVersion,
			Conditions:      model.Conditions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}

	return result, nil
}

// kubeClientset prefers an explicit kubeconfig, then in-cluster credentials,
// then the default loading rules.
func kubeClientset(kubeconfigPath string) (kubernetes.Interface, error) {
	var (
		config *rest.Config
		err    error
	)

	switch {
	case kubeconfigPath != "":
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	default:
		if config, err = rest.InClusterConfig(); err != nil {
			config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
				clientcmd.NewDefaultClientConfigLoadingRules(),
				&clientcmd.ConfigOverrides{},
			).ClientConfig()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

// syncConfigMap writes the store and model ids into namespace/name, creating it when missing.
func syncConfigMap(ctx context.Context, clientset kubernetes.Interface, resource, storeID, modelID string) error {
	namespace, name, ok := strings.Cut(resource, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid configmap resource format: %s, expected namespace/name", resource)
	}

	configMaps := clientset.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data:       map[string]string{configMapStoreKey: storeID, configMapModelKey: modelID},
		}

		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create configmap %s: %w", resource, err)
		}

		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get configmap %s: %w", resource, err)
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string)
	}
	cm.Data[configMapStoreKey] = storeID
	cm.Data[configMapModelKey] = modelID

	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update configmap %s: %w", resource, err)
	}

	return nil
}
