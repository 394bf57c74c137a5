package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_GetString(t *testing.T) {
	r := &Record{Attributes: map[string]interface{}{
		"name":  "Acme Corp",
		"empty": "",
		"num":   float64(3),
	}}

	name, ok := r.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "Acme Corp", name)

	// Present-but-empty is distinguishable from absent.
	empty, ok := r.GetString("empty")
	assert.True(t, ok)
	assert.Equal(t, "", empty)

	_, ok = r.GetString("missing")
	assert.False(t, ok)

	_, ok = r.GetString("num")
	assert.False(t, ok)
}

func TestRecord_GetRef(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		wantOK bool
		wantID string
	}{
		{"typed reference", EntityReference{Entity: "account", ID: "P"}, true, "P"},
		{"pointer reference", &EntityReference{Entity: "account", ID: "P"}, true, "P"},
		{"decoded json object", map[string]interface{}{"entity": "account", "id": "P"}, true, "P"},
		{"object without id", map[string]interface{}{"entity": "account"}, false, ""},
		{"nil value", nil, false, ""},
		{"wrong type", "account:P", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Attributes: map[string]interface{}{"parentaccountid": tt.value}}
			ref, ok := r.GetRef("parentaccountid")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, ref)
				assert.Equal(t, tt.wantID, ref.ID)
			}
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	body := []byte(`{
		"messageName": "Create",
		"entityName": "account",
		"stage": "PostOperation",
		"mode": "Synchronous",
		"userId": "u1",
		"correlationId": "c1",
		"postImages": {
			"PostImage": {
				"id": "A",
				"entity": "account",
				"attributes": {
					"name": "Acme Corp",
					"parentaccountid": {"entity": "account", "id": "P"}
				}
			}
		}
	}`)

	event, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, MessageCreate, event.MessageName)
	assert.Equal(t, StagePostOperation, event.Stage)
	assert.Equal(t, ModeSynchronous, event.Mode)

	img, ok := event.PostImage("PostImage")
	require.True(t, ok)
	assert.Equal(t, "A", img.ID)

	name, ok := img.GetString("name")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", name)

	ref, ok := img.GetRef("parentaccountid")
	require.True(t, ok)
	assert.Equal(t, "P", ref.ID)

	_, ok = event.PostImage("Other")
	assert.False(t, ok)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, err := DecodeEvent([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode event envelope")
}
