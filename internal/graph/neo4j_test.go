package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evsys/eventlint/internal/model"
)

func TestNewLoaderRejectsBadURI(t *testing.T) {
	_, err := NewLoader(context.Background(), LoaderConfig{URI: "://"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo4j driver")
}

func TestEventBatchFirstSeenOrder(t *testing.T) {
	d := model.NewDocument()
	d.Publishers = append(d.Publishers, publisher("beta", loc("p.cpp", 1, 1), "float"))
	d.Subscribers = append(d.Subscribers,
		subscriber("alpha", "void (int)", freeFn("f", loc("s.cpp", 2, 10), loc("s.cpp", 9, 1)), loc("s.cpp", 2, 3)),
		subscriber("beta", "void (float)", freeFn("g", loc("s.cpp", 3, 10), loc("s.cpp", 9, 1)), loc("s.cpp", 3, 3)))
	d.Registrars = append(d.Registrars, registrar("gamma", loc("r.cpp", 4, 1), "int"))

	var names []string
	for _, row := range eventBatch(d) {
		names = append(names, row["name"].(string))
	}
	assert.Equal(t, []string{"beta", "alpha", "gamma"}, names)
}

func TestRoleBatchesMismatchFlags(t *testing.T) {
	d := model.NewDocument()
	d.Publishers = append(d.Publishers,
		publisher("onDamage", loc("p.cpp", 10, 5), "int", "float"),
		publisher("clean", loc("p.cpp", 20, 5), "float"))
	d.Subscribers = append(d.Subscribers,
		subscriber("onDamage", "void (int)",
			freeFn("onDamage", loc("s.cpp", 11, 20), loc("s.cpp", 40, 1)), loc("s.cpp", 11, 3)),
		subscriber("clean", "void (float)",
			freeFn("onClean", loc("s.cpp", 21, 20), loc("s.cpp", 50, 1)), loc("s.cpp", 21, 3)))
	d.Registrars = append(d.Registrars, registrar("clean", loc("r.cpp", 1, 5), "float"))

	pubs, subs, regs := roleBatches(d)
	require.Len(t, pubs, 2)
	require.Len(t, subs, 2)
	require.Len(t, regs, 1)

	assert.Equal(t, "p.cpp: 10::5", pubs[0]["id"])
	assert.Equal(t, "publish", pubs[0]["kind"])
	assert.Equal(t, "int, float", pubs[0]["signature"])
	assert.Equal(t, true, pubs[0]["mismatched"])
	assert.Equal(t, false, pubs[1]["mismatched"])

	assert.Equal(t, "s.cpp: 11::20", subs[0]["id"])
	assert.Equal(t, true, subs[0]["mismatched"])
	assert.Equal(t, false, subs[1]["mismatched"])

	assert.Equal(t, "registerEvent", regs[0]["kind"])
	assert.Equal(t, false, regs[0]["mismatched"])
}

func TestRoleBatchesSkipInvalidRecords(t *testing.T) {
	d := model.NewDocument()
	d.Publishers = append(d.Publishers, publisher("", loc("p.cpp", 1, 1), "float"))
	d.Subscribers = append(d.Subscribers, model.Subscriber{
		EventName: "tick",
		Callback:  model.CallbackTarget{Kind: model.CallbackUnresolved},
	})

	pubs, subs, regs := roleBatches(d)
	assert.Empty(t, pubs)
	assert.Empty(t, subs)
	assert.Empty(t, regs)
}

func TestCallbackBatch(t *testing.T) {
	d := model.NewDocument()
	def := loc("handlers.cpp", 5, 1)
	d.Subscribers = append(d.Subscribers,
		subscriber("tick", "void (float)", freeFn("onTick", loc("a.cpp", 1, 10), def), loc("a.cpp", 1, 3)),
		subscriber("stop", "void (float)", freeFn("onTick", loc("b.cpp", 2, 10), def), loc("b.cpp", 2, 3)),
		model.Subscriber{
			EventName: "tick",
			Callback:  model.CallbackTarget{Kind: model.CallbackUnresolved},
			Location:  loc("c.cpp", 3, 3),
		})

	batch := callbackBatch(d)
	require.Len(t, batch, 2)
	assert.Equal(t, "sink_FreeFunction_onTick_handlers.cpp:5", batch[0]["id"])
	assert.Equal(t, "FreeFunction", batch[0]["kind"])
	assert.Equal(t, "a.cpp: 1::10", batch[0]["site"])
	assert.Equal(t, batch[0]["id"], batch[1]["id"])
	assert.Equal(t, "b.cpp: 2::10", batch[1]["site"])
}
