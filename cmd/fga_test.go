// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestSyncConfigMapCreatesMissing(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset()

	if err := syncConfigMap(ctx, clientset, "identity/workspace-fga", "store-1", "model-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cm, err := clientset.CoreV1().ConfigMaps("identity").Get(ctx, "workspace-fga", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("expected configmap to exist: %v", err)
	}

	if cm.Data[configMapStoreKey] != "store-1" || cm.Data[configMapModelKey] != "model-1" {
		t.Errorf("unexpected configmap data %v", cm.Data)
	}
}

func TestSyncConfigMapUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "workspace-fga", Namespace: "identity"},
		Data:       map[string]string{"LOG_LEVEL": "debug", configMapStoreKey: "old-store"},
	})

	if err := syncConfigMap(ctx, clientset, "identity/workspace-fga", "store-2", "model-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cm, err := clientset.CoreV1().ConfigMaps("identity").Get(ctx, "workspace-fga", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cm.Data["LOG_LEVEL"] != "debug" {
		t.Errorf("expected unrelated keys to survive, got %v", cm.Data)
	}

	if cm.Data[configMapStoreKey] != "store-2" || cm.Data[configMapModelKey] != "model-2" {
		t.Errorf("unexpected configmap data %v", cm.Data)
	}
}

func TestSyncConfigMapRejectsBadResource(t *testing.T) {
	for _, resource := range []string{"", "name-only", "/name", "ns/", "a/b/c"} {
		if err := syncConfigMap(context.Background(), fake.NewSimpleClientset(), resource, "s", "m"); err == nil {
			t.Errorf("expected error for resource %q", resource)
		}
	}
}

func TestValidateMigrateArgs(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{args: nil},
		{args: []string{"up"}},
		{args: []string{"down"}},
		{args: []string{"down", "3"}},
		{args: []string{"status"}},
		{args: []string{"check"}},
		{args: []string{"down", "-1"}, wantErr: true},
		{args: []string{"up", "2"}, wantErr: true},
		{args: []string{"sideways"}, wantErr: true},
		{args: []string{"down", "1", "2"}, wantErr: true},
	}

	for _, test := range tests {
		err := validateMigrateArgs(migrateCmd, test.args)
		if (err != nil) != test.wantErr {
			t.Errorf("args %v: expected error %v, got %v", test.args, test.wantErr, err)
		}
	}
}
