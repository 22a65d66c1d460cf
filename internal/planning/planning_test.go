package planning

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd-industrial/plantsim/pkg/utils"
)

func ids(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestBadScheduleMetrics(t *testing.T) {
	m := CalculateMetrics(BadSchedule())

	assert.Equal(t, 5, m.LateOrders)
	assert.Equal(t, 38, m.OnTimeDelivery)
	assert.Equal(t, 17.5, m.Makespan)
	assert.Equal(t, 55, m.Utilization)
	assert.Equal(t, 8, m.TotalOrders)
}

func TestOptimizePacksByDeadline(t *testing.T) {
	in := BadSchedule()
	out := Optimize(in)

	want := []string{"ORD-102", "ORD-101", "ORD-103", "ORD-106", "ORD-104", "ORD-105", "ORD-107", "ORD-108"}
	if diff := cmp.Diff(want, ids(out)); diff != "" {
		t.Fatalf("order sequence mismatch (-want +got):\n%s", diff)
	}

	starts := map[string]float64{}
	for _, o := range out {
		starts[o.ID] = o.StartTime
	}
	assert.Equal(t, 8.0, starts["ORD-102"])
	assert.Equal(t, 9.5, starts["ORD-101"])
	assert.Equal(t, 11.5, starts["ORD-103"])
	assert.Equal(t, 10.5, starts["ORD-108"])

	assert.Empty(t, DetectConflicts(out))
	assert.Equal(t, 100, CalculateMetrics(out).OnTimeDelivery)

	// input untouched
	if diff := cmp.Diff(BadSchedule(), in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestOptimizePlanImprovement(t *testing.T) {
	plan, err := OptimizePlan(BadSchedule())
	require.NoError(t, err)

	assert.Equal(t, 62, plan.Improvement.OTDImprovement)
	assert.Equal(t, 1.5, plan.Improvement.SetupTimeSaved)
	assert.Equal(t, 14.5, plan.After.Metrics.Makespan)
	assert.Equal(t, 1.5, plan.After.Metrics.SetupTimeSaved)
	assert.Equal(t,
		"Termin uyumu %38'dan %100'e yükseltildi. Toplam 3.0 saat öne çekildi. Setup süreleri minimize edilerek 1.5 saat tasarruf sağlandı.",
		plan.Improvement.Message)
	assert.Len(t, plan.Before.LateOrderIDs, 5)
	assert.Empty(t, plan.After.LateOrderIDs)
}

func TestCompareMetricsNoGain(t *testing.T) {
	m := CalculateMetrics(Optimize(BadSchedule()))
	imp := CompareMetrics(m, m)
	assert.Equal(t, "Çizelge optimize edildi.", imp.Message)
	assert.Zero(t, imp.SetupTimeSaved)
}

func TestDetectConflicts(t *testing.T) {
	orders := []Order{
		{ID: "A", MachineID: "CNC-1", StartTime: 8, Duration: 2},
		{ID: "B", MachineID: "CNC-1", StartTime: 9, Duration: 1},
		{ID: "C", MachineID: "CNC-1", StartTime: 10, Duration: 1},
		{ID: "D", MachineID: "CNC-2", StartTime: 8, Duration: 4},
	}
	assert.Equal(t, [][2]string{{"A", "B"}}, DetectConflicts(orders))
}

func TestEmptyScheduleMetrics(t *testing.T) {
	m := CalculateMetrics(nil)
	assert.Zero(t, m.OnTimeDelivery)
	assert.Equal(t, WorkStart, m.Makespan)
	assert.Zero(t, m.Utilization)
}

func TestValidateRejectsUnknownMachine(t *testing.T) {
	_, err := Evaluate([]Order{{ID: "X", MachineID: "Lathe", Duration: 1}})
	assert.True(t, utils.IsCode(err, utils.ErrCodeValidation))

	_, err = Evaluate([]Order{{ID: "Y", MachineID: "CNC-1", Duration: 0}})
	assert.True(t, utils.IsCode(err, utils.ErrCodeValidation))
}

func TestGroupByMachineAndColor(t *testing.T) {
	g := GroupByMachine(BadSchedule())
	assert.Len(t, g["CNC-1"], 3)
	assert.Len(t, g["Assembly"], 2)
	assert.Equal(t, "#8b5cf6", MachineColor("CNC-2"))
	assert.Equal(t, "#6b7280", MachineColor("nope"))
}
