package grpc

import (
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response field names.
const (
	fieldID          = "id"
	fieldEmail       = "email"
	fieldPassword    = "password"
	fieldDisplayName = "display_name"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
	fieldAccessToken = "access_token"
	fieldTokenType   = "token_type"
	fieldExpiresAt   = "expires_at"
	fieldIdentities  = "identities"
	fieldStatus      = "status"
)

// optionalString returns the string at key, or nil when the key is absent
// or null. Any other kind is an InvalidArgument.
func optionalString(req *structpb.Struct, key string) (*string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		return &k.StringValue, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid input: %s must be a string", key)
	}
}

// stringField is optionalString with absent treated as "".
func stringField(req *structpb.Struct, key string) (string, error) {
	v, err := optionalString(req, key)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func identityToStruct(i *models.PublicIdentity) *structpb.Struct {
	return &structpb.Struct{Fields: identityFields(i)}
}

func identityFields(i *models.PublicIdentity) map[string]*structpb.Value {
	return map[string]*structpb.Value{
		fieldID:          structpb.NewStringValue(i.ID),
		fieldEmail:       structpb.NewStringValue(i.Email),
		fieldDisplayName: structpb.NewStringValue(i.DisplayName),
		fieldCreatedAt:   structpb.NewStringValue(i.CreatedAt.UTC().Format(time.RFC3339)),
		fieldUpdatedAt:   structpb.NewStringValue(i.UpdatedAt.UTC().Format(time.RFC3339)),
	}
}

func identitiesToStruct(list []*models.PublicIdentity) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(list))
	for _, i := range list {
		values = append(values, structpb.NewStructValue(identityToStruct(i)))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldIdentities: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func tokenToStruct(t *auth.SessionToken) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccessToken: structpb.NewStringValue(t.Value),
		fieldTokenType:   structpb.NewStringValue("Bearer"),
		fieldExpiresAt:   structpb.NewStringValue(t.ExpiresAt.UTC().Format(time.RFC3339)),
	}}
}
