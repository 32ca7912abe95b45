// Package semantic owns all Qdrant operations: collection bootstrap, pattern
// upserts, and k-NN search.
package semantic

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// keywordFields are indexed as keyword payload fields so the collection can
// filter on identifiers and enums.
var keywordFields = []string{
	"compliance_id", "framework", "category", "applies_to",
	"country", "region", "risk_level", "data_types",
}

// summaryFields are the payload fields returned by Search.
var summaryFields = []string{"compliance_id", "framework", "title", "category", "risk_level"}

// IndexParams configures the vector collection. Zero values fall back to
// defaults; Validate rejects out-of-range settings.
type IndexParams struct {
	// Dimensions is the embedding vector length.
	Dimensions int
	// M is the HNSW graph connectivity (links per node), typically 8-64.
	M uint64
	// EfConstruct is the HNSW build-time beam width, typically 64-512.
	EfConstruct uint64
	// EfSearch is the query-time beam width; 0 uses the collection default.
	EfSearch uint64
}

// DefaultIndexParams matches the embedding provider's 1536-dim output.
func DefaultIndexParams() IndexParams {
	return IndexParams{
		Dimensions:  1536,
		M:           16,
		EfConstruct: 128,
	}
}

// Validate checks parameter ranges and applies defaults for zero values.
func (p *IndexParams) Validate() error {
	def := DefaultIndexParams()
	if p.Dimensions == 0 {
		p.Dimensions = def.Dimensions
	}
	if p.Dimensions < 0 {
		return fmt.Errorf("semantic: dimensions must be positive, got %d", p.Dimensions)
	}
	if p.M == 0 {
		p.M = def.M
	}
	if p.EfConstruct == 0 {
		p.EfConstruct = def.EfConstruct
	}
	if p.EfConstruct < p.M {
		return fmt.Errorf("semantic: ef_construct %d must be >= m %d", p.EfConstruct, p.M)
	}
	return nil
}

// pointsAPI is the slice of the Qdrant points service the store uses.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	CreateFieldIndex(ctx context.Context, in *pb.CreateFieldIndexCollection, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
}

// collectionsAPI is the slice of the Qdrant collections service the store uses.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
	Get(ctx context.Context, in *pb.GetCollectionInfoRequest, opts ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error)
}

// VectorStore is the sole owner of the pattern collection's physical schema.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
	params      IndexParams
}

// New connects to Qdrant at the given gRPC address.
func New(addr, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// NewWithClients builds a store around existing clients. Used in tests.
func NewWithClients(points pointsAPI, collections collectionsAPI, collection string) *VectorStore {
	return &VectorStore{points: points, collections: collections, collection: collection}
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	if v.conn == nil {
		return nil
	}
	return v.conn.Close()
}

// EnsureCollection creates the pattern collection if it does not exist:
// cosine distance, HNSW with the given construction parameters, and keyword
// indexes for the filterable payload fields. Idempotent: an existing
// collection is left untouched.
func (v *VectorStore) EnsureCollection(ctx context.Context, params IndexParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	v.params = params

	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	dims := uint64(params.Dimensions)
	m := params.M
	ef := params.EfConstruct
	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     dims,
					Distance: pb.Distance_Cosine,
				},
			},
		},
		HnswConfig: &pb.HnswConfigDiff{
			M:           &m,
			EfConstruct: &ef,
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}

	wait := true
	for _, field := range keywordFields {
		ft := pb.FieldType_FieldTypeKeyword
		_, err := v.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
			CollectionName: v.collection,
			Wait:           &wait,
			FieldName:      field,
			FieldType:      &ft,
		})
		if err != nil {
			return fmt.Errorf("semantic: index payload field %s: %w", field, err)
		}
	}
	return nil
}

// Upsert writes records into the collection with wait semantics, so they are
// searchable once the call returns. Keyed by record ID: full overwrite.
func (v *VectorStore) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: toPayload(r.Payload),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Flush is the post-ingestion visibility barrier. Upserts already wait for
// commit, so a collection info round-trip is sufficient to confirm the
// backend is reachable and serving the new points.
func (v *VectorStore) Flush(ctx context.Context) error {
	_, err := v.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: v.collection})
	if err != nil {
		return fmt.Errorf("semantic: flush %s: %w", v.collection, err)
	}
	return nil
}

// Search performs k-NN search, returning up to k hits with the summary
// payload fields, ranked by descending similarity score.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, k int) ([]SearchResult, error) {
	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(k),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{Fields: summaryFields},
			},
		},
	}
	if v.params.EfSearch > 0 {
		ef := v.params.EfSearch
		req.Params = &pb.SearchParams{HnswEf: &ef}
	}

	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, hit := range resp.GetResult() {
		sr := SearchResult{Score: hit.GetScore()}
		for key, val := range hit.GetPayload() {
			s := val.GetStringValue()
			switch key {
			case "compliance_id":
				sr.ComplianceID = s
			case "framework":
				sr.Framework = s
			case "title":
				sr.Title = s
			case "category":
				sr.Category = s
			case "risk_level":
				sr.RiskLevel = s
			}
		}
		results[i] = sr
	}
	return results, nil
}

// toPayload converts a generic payload map into Qdrant values.
func toPayload(payload map[string]any) map[string]*pb.Value {
	out := make(map[string]*pb.Value, len(payload))
	for k, val := range payload {
		out[k] = toValue(val)
	}
	return out
}

func toValue(val any) *pb.Value {
	switch tv := val.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: tv}}
	case []string:
		items := make([]*pb.Value, len(tv))
		for i, s := range tv {
			items[i] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
		}
		return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: items}}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(tv)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: tv}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: tv}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: tv}}
	case time.Time:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: tv.UTC().Format(time.RFC3339)}}
	default:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: fmt.Sprint(tv)}}
	}
}
