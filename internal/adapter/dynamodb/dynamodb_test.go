package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plain flattens a tree into maps, slices and strings.
func plain(t domain.Tree) any {
	switch t.Kind() {
	case domain.KindObject:
		m := make(map[string]any, t.Len())
		for _, f := range t.Fields() {
			m[f.Key] = plain(f.Value)
		}
		return m
	case domain.KindArray:
		l := make([]any, 0, t.Len())
		for _, item := range t.Items() {
			l = append(l, plain(item))
		}
		return l
	default:
		return t.Text()
	}
}

// plainAttr flattens attribute values the same way and fails on any member
// type the serializer must never emit.
func plainAttr(t *testing.T, av types.AttributeValue) any {
	t.Helper()
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(v.Value))
		for k, child := range v.Value {
			m[k] = plainAttr(t, child)
		}
		return m
	case *types.AttributeValueMemberL:
		l := make([]any, 0, len(v.Value))
		for _, child := range v.Value {
			l = append(l, plainAttr(t, child))
		}
		return l
	default:
		t.Fatalf("unexpected attribute type %T", av)
		return nil
	}
}

func randomTree(f *gofakeit.Faker, depth int) domain.Tree {
	if depth == 0 {
		return domain.Scalar(f.Word())
	}
	switch f.Number(0, 2) {
	case 0:
		return domain.Scalar(f.Numerify("###.#"))
	case 1:
		items := make([]domain.Tree, f.Number(0, 3))
		for i := range items {
			items[i] = randomTree(f, depth-1)
		}
		return domain.Array(items...)
	default:
		return randomObject(f, depth-1)
	}
}

func randomObject(f *gofakeit.Faker, depth int) domain.Tree {
	b := domain.NewObjectBuilder()
	for i, n := 0, f.Number(0, 4); i < n; i++ {
		b.Set(fmt.Sprintf("%s_%d", f.Word(), i), randomTree(f, depth))
	}
	return b.Build()
}

func TestMarshalTree_PreservesShape(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 100; i++ {
		tree := randomObject(f, 3)
		got := plainAttr(t, MarshalTree(tree))
		if diff := cmp.Diff(plain(tree), got); diff != "" {
			t.Fatalf("shape mismatch (-tree +attr):\n%s", diff)
		}
	}
}

func TestMarshalTree_ScalarsAreStrings(t *testing.T) {
	av := MarshalTree(domain.Scalar("1012"))
	s, ok := av.(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "1012", s.Value)
}

func TestMarshalTree_EmptyContainers(t *testing.T) {
	m, ok := MarshalTree(domain.EmptyObject()).(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Empty(t, m.Value)

	l, ok := MarshalTree(domain.Array()).(*types.AttributeValueMemberL)
	require.True(t, ok)
	assert.Empty(t, l.Value)
}

func TestMarshalItem_RequiresObjectRoot(t *testing.T) {
	_, err := MarshalItem(domain.Scalar("x"))
	assert.ErrorIs(t, err, domain.ErrSerialization)

	_, err = MarshalItem(domain.Array(domain.Scalar("x")))
	assert.ErrorIs(t, err, domain.ErrSerialization)

	item, err := MarshalItem(domain.NewObjectBuilder().SetText("gufi", "g-1").Build())
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "g-1"}, item["gufi"])
}

type fakeClient struct {
	inputs []*awsdynamodb.PutItemInput
	err    error
}

func (f *fakeClient) PutItem(_ context.Context, in *awsdynamodb.PutItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &awsdynamodb.PutItemOutput{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_Put(t *testing.T) {
	client := &fakeClient{}
	store := NewStoreWithClient(client, discardLogger())

	record := domain.NewObjectBuilder().
		SetText("gufi", "g-1").
		Set("departure", domain.NewObjectBuilder().SetText("departureAerodrome", "WSSS").Build()).
		Build()

	require.NoError(t, store.Put(context.Background(), "FIXM_FlightData", record))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "FIXM_FlightData", aws.ToString(in.TableName))
	assert.Equal(t, map[string]any{
		"gufi":      "g-1",
		"departure": map[string]any{"departureAerodrome": "WSSS"},
	}, plainAttr(t, &types.AttributeValueMemberM{Value: in.Item}))
}

func TestStore_PutErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("throttled")}
	store := NewStoreWithClient(client, discardLogger())

	err := store.Put(context.Background(), "T", domain.NewObjectBuilder().SetText("a", "b").Build())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Contains(t, err.Error(), "T")

	err = store.Put(context.Background(), "T", domain.Scalar("x"))
	assert.ErrorIs(t, err, domain.ErrSerialization)
	assert.Len(t, client.inputs, 1, "non-object records never reach the client")
}
