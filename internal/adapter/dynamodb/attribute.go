package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// MarshalTree maps a tree onto DynamoDB attribute values. Scalars become S,
// objects M and arrays L; no numeric or boolean attributes are produced.
func MarshalTree(t domain.Tree) types.AttributeValue {
	switch t.Kind() {
	case domain.KindObject:
		m := make(map[string]types.AttributeValue, t.Len())
		for _, f := range t.Fields() {
			m[f.Key] = MarshalTree(f.Value)
		}
		return &types.AttributeValueMemberM{Value: m}
	case domain.KindArray:
		items := t.Items()
		l := make([]types.AttributeValue, len(items))
		for i, item := range items {
			l[i] = MarshalTree(item)
		}
		return &types.AttributeValueMemberL{Value: l}
	default:
		return &types.AttributeValueMemberS{Value: t.Text()}
	}
}

// MarshalItem converts a record into a PutItem item. The root must be an object.
func MarshalItem(t domain.Tree) (map[string]types.AttributeValue, error) {
	if t.Kind() != domain.KindObject {
		return nil, fmt.Errorf("%w: item root is %s, want object", domain.ErrSerialization, t.Kind())
	}
	return MarshalTree(t).(*types.AttributeValueMemberM).Value, nil
}
