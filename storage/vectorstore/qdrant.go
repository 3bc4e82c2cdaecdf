// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

var _ storage.VectorStore = (*Qdrant)(nil)

// Qdrant is a storage.VectorStore backed by a Qdrant cluster, reached
// through the official gRPC client.
type Qdrant struct {
	client *qdrant.Client
}

// QdrantConfig is the subset of qdrant.Config the kernel exposes through
// its own configuration surface.
type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// KeepaliveTime and KeepaliveTimeout tune the gRPC transport's
	// keepalive pings, used as-is by the qdrant client's underlying
	// grpc.ClientConn. Both zero disables the keepalive dial option
	// entirely, letting the client's own default stand.
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// NewQdrant dials a Qdrant cluster and returns a ready VectorStore.
func NewQdrant(cfg QdrantConfig) (*Qdrant, error) {
	qcfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	}
	if cfg.KeepaliveTime > 0 {
		qcfg.GrpcOptions = append(qcfg.GrpcOptions, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    cfg.KeepaliveTime,
			Timeout: cfg.KeepaliveTimeout,
		}))
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, fmt.Errorf("vectorstore: dial qdrant: %w", err))
	}
	return &Qdrant{client: client}, nil
}

func (q *Qdrant) HealthCheck(ctx context.Context) bool {
	_, err := q.client.HealthCheck(ctx)
	return err == nil
}

func (q *Qdrant) Stats(ctx context.Context) (storage.Stats, error) {
	names, err := q.client.ListCollections(ctx)
	if err != nil {
		return storage.Stats{}, kernelerr.New(kernelerr.Internal, err)
	}

	var total int64
	for _, name := range names {
		info, err := q.client.GetCollectionInfo(ctx, name)
		if err != nil {
			continue
		}
		total += int64(info.GetPointsCount())
	}
	return storage.Stats{Backend: "vectorstore.qdrant", ItemCount: total}, nil
}

func (q *Qdrant) EnsureCollection(ctx context.Context, name string, dims int) error {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	if exists {
		return nil
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return kernelerr.New(kernelerr.Internal, fmt.Errorf("vectorstore: create collection %q: %w", name, err))
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, scope types.Scope, collection string, id string, vector []float32, metadata map[string]types.Value) error {
	payload := toQdrantPayload(scope, metadata)

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(scopedID(scope, id)),
				Vectors: qdrant.NewVectors(vector...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		return kernelerr.New(kernelerr.Internal, fmt.Errorf("vectorstore: upsert: %w", err))
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, scope types.Scope, collection string, query []float32, k int, filter storage.VectorFilter) ([]storage.VectorMatch, error) {
	limit := uint64(k)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Filter:         toQdrantFilter(scope, filter),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, fmt.Errorf("vectorstore: search: %w", err))
	}

	out := make([]storage.VectorMatch, 0, len(points))
	for _, p := range points {
		out = append(out, storage.VectorMatch{
			ID:       p.GetId().String(),
			Score:    p.GetScore(),
			Metadata: fromQdrantPayload(p.GetPayload()),
		})
	}
	return out, nil
}

func (q *Qdrant) Delete(ctx context.Context, scope types.Scope, collection string, id string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorIDs(qdrant.NewID(scopedID(scope, id))),
	})
	if err != nil {
		return kernelerr.New(kernelerr.Internal, fmt.Errorf("vectorstore: delete: %w", err))
	}
	return nil
}

// tenantKey is the payload field every point carries so a Search filter
// can enforce scope isolation the same way every other backend does.
const tenantKey = "__scope"

func toQdrantPayload(scope types.Scope, metadata map[string]types.Value) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(metadata)+1)
	payload[tenantKey] = qdrant.NewValueString(scope.Prefix())
	for k, v := range metadata {
		if s, ok := v.AsString(); ok {
			payload[k] = qdrant.NewValueString(s)
			continue
		}
		if n, ok := v.AsNumber(); ok {
			payload[k] = qdrant.NewValueDouble(n)
			continue
		}
		if b, ok := v.AsBool(); ok {
			payload[k] = qdrant.NewValueBool(b)
			continue
		}
	}
	return payload
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]types.Value {
	out := make(map[string]types.Value, len(payload))
	for k, v := range payload {
		if k == tenantKey {
			continue
		}
		switch {
		case v.GetStringValue() != "":
			out[k] = types.String(v.GetStringValue())
		default:
			out[k] = types.Number(v.GetDoubleValue())
		}
	}
	return out
}

func toQdrantFilter(scope types.Scope, filter storage.VectorFilter) *qdrant.Filter {
	conditions := []*qdrant.Condition{
		qdrant.NewMatch(tenantKey, scope.Prefix()),
	}
	for k, v := range filter {
		if s, ok := v.AsString(); ok {
			conditions = append(conditions, qdrant.NewMatch(k, s))
		}
	}
	return &qdrant.Filter{Must: conditions}
}
