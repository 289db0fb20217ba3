package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

func TestMaskAPIKey_Example(t *testing.T) {
	got := model.MaskAPIKey("sk-abcdef1234567890")

	assert.Equal(t, "sk-a***********7890", got)
	assert.Len(t, got, len("sk-abcdef1234567890"))
}

func TestMaskAPIKey_Empty(t *testing.T) {
	assert.Equal(t, "", model.MaskAPIKey(""))
}

func TestMaskAPIKey_ShortKeysFullyMasked(t *testing.T) {
	for n := 1; n <= 8; n++ {
		key := strings.Repeat("k", n)
		assert.Equal(t, strings.Repeat("*", n), model.MaskAPIKey(key), "length %d", n)
	}
}

func TestMaskAPIKey_LongKeysKeepPrefixAndSuffix(t *testing.T) {
	keys := []string{
		"123456789",
		"app-0123456789abcdef",
		"dataset-ZYXWVUTSRQPONMLKJIHGFEDCBA",
	}

	for _, key := range keys {
		got := model.MaskAPIKey(key)
		assert.Len(t, got, len(key))
		assert.True(t, strings.HasPrefix(got, key[:4]), key)
		assert.True(t, strings.HasSuffix(got, key[len(key)-4:]), key)
		assert.Equal(t, strings.Repeat("*", len(key)-8), got[4:len(got)-4], key)
	}
}

func TestDifyConfig_Configured(t *testing.T) {
	var missing *model.DifyConfig
	assert.False(t, missing.Configured())
	assert.Equal(t, "", missing.MaskedAPIKey())

	assert.False(t, (&model.DifyConfig{BaseURL: model.DefaultDifyBaseURL}).Configured())
	assert.False(t, (&model.DifyConfig{KeyUnreadable: true}).Configured())
	assert.True(t, (&model.DifyConfig{APIKey: "app-key"}).Configured())
}

func TestUpstreamCredentials_KeyByScope(t *testing.T) {
	creds := model.UpstreamCredentials{WorkflowKey: "wf", DatasetKey: "ds"}

	assert.Equal(t, "ds", creds.Key(model.KeyScopeDataset))
	assert.Equal(t, "wf", creds.Key(model.KeyScopeWorkflow))
}

func TestAIModelUpdate_Apply(t *testing.T) {
	m := model.AIModel{Name: "llama", Provider: "ollama", Enabled: true}
	name := "llama3"
	disabled := false

	model.AIModelUpdate{Name: &name, Enabled: &disabled}.Apply(&m)

	assert.Equal(t, "llama3", m.Name)
	assert.Equal(t, "ollama", m.Provider)
	assert.False(t, m.Enabled)
}
