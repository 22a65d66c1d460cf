package copilot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

func newTestCopilot() *Copilot {
	return New(nil, Options{})
}

func TestDefaultKnowledgeBase(t *testing.T) {
	kb := DefaultKnowledgeBase()
	assert.Len(t, kb.Templates, 8)
	assert.Len(t, kb.ThinkingSteps, 4)
	assert.Len(t, kb.QuickPrompts, 6)
	assert.Len(t, kb.Chat.Rules, 5)
	assert.Equal(t, SourceSystem, kb.Fallback.SourceType)
	assert.Equal(t, 600, kb.ThinkingSteps[0].DurationMs)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ariza nedir", Normalize("ARIZA NEDİR"))
	assert.Equal(t, "uretim gucu cok dusuk", Normalize("Üretim gücü çok düşük"))
	assert.Equal(t, "saglik", Normalize("sağlık"))
}

func TestQueryMatchesTemplates(t *testing.T) {
	c := newTestCopilot()
	ctx := context.Background()

	cases := []struct {
		query      string
		sourceType SourceType
		confidence int
		source     string
	}{
		{"CNC-02 neden dün durdu?", SourceLog, 98, "Maintenance_Log_2024.json"},
		{"Güncel OEE değeri nedir?", SourceAnalytics, 95, "Realtime_Analytics_Engine"},
		{"Gelecek ay bakım maliyet tahmini nedir?", SourceDocument, 87, "Financial_Projections_Q1.xlsx"},
		{"Acil prosedür nedir?", SourceDocument, 100, "Operator_Handbook_v3.2.pdf (Sayfa 45)"},
		{"Bugünkü enerji tüketimi nasıl?", SourceAnalytics, 94, "Energy_Dashboard_Live"},
		{"Kusur oranı?", SourceLog, 96, "Quality_Inspection_Log.csv"},
		{"Makinelerin güncel sağlık durumu nedir?", SourceAnalytics, 92, "Predictive_Maintenance_AI"},
		{"Sipariş teslimat tarihi", SourceAnalytics, 89, "Production_Planning_System"},
		{"ARIZA kaydı", SourceLog, 98, "Maintenance_Log_2024.json"},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			res, err := c.Query(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.sourceType, res.SourceType)
			assert.Equal(t, tc.confidence, res.Confidence)
			assert.Equal(t, tc.source, res.Source)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, tc.query, res.Query)
		})
	}
}

func TestQueryFirstTemplateWins(t *testing.T) {
	// "stop" belongs to the downtime template, which precedes the procedure one
	res, err := newTestCopilot().Query(context.Background(), "Acil stop prosedürü nedir?")
	require.NoError(t, err)
	assert.Equal(t, SourceLog, res.SourceType)
	assert.Equal(t, "Teknik servis çağrısı #445 oluşturuldu.", res.ActionTaken)
}

func TestQueryCarriesChartData(t *testing.T) {
	res, err := newTestCopilot().Query(context.Background(), "oee")
	require.NoError(t, err)
	require.Len(t, res.ChartData, 5)
	assert.Equal(t, SparklinePoint{Value: 82, Label: "Pzt"}, res.ChartData[0])
}

func TestQueryFallback(t *testing.T) {
	res, err := newTestCopilot().Query(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, "System", res.Source)
	assert.Equal(t, SourceSystem, res.SourceType)
	assert.Equal(t, 0, res.Confidence)
	assert.Contains(t, res.Answer, "yeterli bilgi bulamadım")
	assert.Empty(t, res.ChartData)
}

func TestQueryRejectsEmpty(t *testing.T) {
	_, err := newTestCopilot().Query(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.ErrCodeValidation))
}

func TestQueryHonoursContext(t *testing.T) {
	c := New(nil, Options{QueryDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := c.Query(ctx, "oee")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestQueryWaitsForDelay(t *testing.T) {
	c := New(nil, Options{QueryDelay: 30 * time.Millisecond})
	start := time.Now()
	_, err := c.Query(context.Background(), "oee")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestChat(t *testing.T) {
	c := newTestCopilot()

	assert.Contains(t, c.ChatAnswer("Bakım planı?"), "Bakım önerileri")
	assert.Contains(t, c.ChatAnswer("energy usage"), "Enerji analizi")
	assert.Contains(t, c.ChatAnswer("quality"), "Kalite raporu")
	assert.Contains(t, c.ChatAnswer("ÜRETİM nasıl"), "Üretim durumu")
	assert.Contains(t, c.ChatAnswer("makine riski"), "Risk analizi")
	assert.Contains(t, c.ChatAnswer("merhaba"), "hoş geldiniz")

	reply, err := c.Chat(context.Background(), "enerji")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.ID)
	assert.Contains(t, reply.Response, "6.546 kWh")
}

func TestPromptsAreCopies(t *testing.T) {
	c := newTestCopilot()
	p := c.QuickPrompts()
	p[0].Label = "changed"
	assert.Equal(t, "Durum Kontrol", c.QuickPrompts()[0].Label)
	assert.Equal(t, "Sonuçlar derleniyor...", c.ThinkingSteps()[3].Text)
}

func TestParseKnowledgeBaseErrors(t *testing.T) {
	_, err := ParseKnowledgeBase([]byte("templates: [\n"))
	assert.Error(t, err)

	_, err = ParseKnowledgeBase([]byte("templates: []\n"))
	assert.Error(t, err)

	_, err = ParseKnowledgeBase([]byte("templates:\n  - answer: x\n"))
	assert.Error(t, err)

	kb, err := ParseKnowledgeBase([]byte("templates:\n  - keywords: [x]\n    answer: y\n"))
	require.NoError(t, err)
	assert.Len(t, kb.Templates, 1)
}
