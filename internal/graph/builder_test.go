package graph

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evsys/eventlint/internal/model"
)

func loc(file string, line, col int) model.SourceLocation {
	return model.SourceLocation{File: file, Line: line, Column: col}
}

func freeFn(name string, call, def model.SourceLocation) model.CallbackTarget {
	return model.CallbackTarget{
		Kind:     model.CallbackFreeFunction,
		Name:     name,
		CallSite: call,
		DefSite:  def,
	}
}

func subscriber(event, alias string, cb model.CallbackTarget, l model.SourceLocation) model.Subscriber {
	return model.Subscriber{EventName: event, EventType: alias, Callback: cb, Location: l}
}

func publisher(event string, l model.SourceLocation, types ...string) model.Publisher {
	p := model.Publisher{EventName: event, Location: l, Args: []model.PublishedArg{}}
	for _, ty := range types {
		p.Args = append(p.Args, model.PublishedArg{Literal: "v", Type: ty})
	}
	return p
}

func registrar(event string, l model.SourceLocation, params ...string) model.Registrar {
	if params == nil {
		params = []string{}
	}
	return model.Registrar{EventName: event, Params: params, Location: l}
}

func classCount(elems []Element, class string) int {
	n := 0
	for _, e := range elems {
		if e.Classes == class {
			n++
		}
	}
	return n
}

func edgeCount(elems []Element) int {
	n := 0
	for _, e := range elems {
		if e.Data.Source != "" {
			n++
		}
	}
	return n
}

// crossDoc builds P publishers and S subscribers of event "tick", all
// sharing one callback target and, unless twisted below, one signature.
func crossDoc(p, s int) *model.Document {
	d := model.NewDocument()
	def := loc("handlers.cpp", 5, 1)
	for i := 0; i < s; i++ {
		call := loc("subs.cpp", 10+i, 20)
		d.Subscribers = append(d.Subscribers,
			subscriber("tick", "void (float)", freeFn("onTick", call, def), loc("subs.cpp", 10+i, 3)))
	}
	for i := 0; i < p; i++ {
		d.Publishers = append(d.Publishers,
			publisher("tick", loc("pubs.cpp", 30+i, 5), "float"))
	}
	return d
}

func TestBuildCrossProductEdges(t *testing.T) {
	elems := Build(crossDoc(2, 3), nil)

	assert.Equal(t, 1, classCount(elems, classGroup))
	assert.Equal(t, 3, classCount(elems, "subscribe"))
	assert.Equal(t, 2, classCount(elems, "publish"))
	assert.Equal(t, 1, classCount(elems, classCallback))
	assert.Equal(t, 3, classCount(elems, classCallbackEdge))
	// P x S publish-subscribe edges, all clean.
	assert.Equal(t, 2*3, classCount(elems, ""))
	assert.Equal(t, 0, classCount(elems, classMismatch))
	assert.Equal(t, 3+2*3, edgeCount(elems))
}

func TestBuildFlagsOnlyEdgesTouchingTheOddSubscriber(t *testing.T) {
	d := crossDoc(2, 3)
	d.Subscribers[2].EventType = "void (double)"

	elems := Build(d, nil)
	assert.Equal(t, 2, classCount(elems, classMismatch))
	assert.Equal(t, 4, classCount(elems, ""))

	oddID := siteID(d.Subscribers[2].Site())
	for _, e := range elems {
		if e.Classes == classMismatch {
			assert.Equal(t, oddID, e.Data.Target)
		}
	}
}

func TestBuildRegistrarOnlyEvent(t *testing.T) {
	d := model.NewDocument()
	d.Registrars = append(d.Registrars, registrar("onTick", loc("events.cpp", 14, 5), "float"))

	elems := Build(d, nil)
	require.Len(t, elems, 2)
	assert.Equal(t, "group", elems[0].Classes)
	assert.Equal(t, "onTick", elems[0].Data.ID)
	assert.Equal(t, "registerEvent", elems[1].Classes)
	assert.Equal(t, "onTick", elems[1].Data.Parent)
	assert.Equal(t, 0, edgeCount(elems))
}

func TestBuildRegistrationEdges(t *testing.T) {
	d := model.NewDocument()
	d.Subscribers = append(d.Subscribers,
		subscriber("tick", "void (float)",
			freeFn("onTick", loc("s.cpp", 10, 20), loc("s.cpp", 50, 1)), loc("s.cpp", 10, 3)))
	d.Publishers = append(d.Publishers, publisher("tick", loc("p.cpp", 30, 5), "double"))
	d.Registrars = append(d.Registrars, registrar("tick", loc("r.cpp", 2, 5), "float"))

	elems := Build(d, nil)
	assert.Equal(t, 1, classCount(elems, classRegistration))
	assert.Equal(t, 1, classCount(elems, classRegistration+" "+classMismatch))
	// The publish-subscribe pairing disagrees too.
	assert.Equal(t, 1, classCount(elems, classMismatch))
}

func TestBuildDeduplicatesSinks(t *testing.T) {
	d := model.NewDocument()
	def := loc("handlers.cpp", 5, 1)
	d.Subscribers = append(d.Subscribers,
		subscriber("tick", "void (float)", freeFn("onTick", loc("a.cpp", 1, 10), def), loc("a.cpp", 1, 3)),
		subscriber("stop", "void (float)", freeFn("onTick", loc("b.cpp", 2, 10), def), loc("b.cpp", 2, 3)))

	elems := Build(d, nil)
	assert.Equal(t, 1, classCount(elems, classCallback))
	assert.Equal(t, 2, classCount(elems, classCallbackEdge))
}

func TestBuildClosureSink(t *testing.T) {
	cb := model.CallbackTarget{
		Kind:     model.CallbackClosure,
		Name:     "(lambda at src/a.cpp:10:5)",
		CallSite: loc("src/a.cpp", 10, 5),
		DefSite:  loc("src/a.cpp", 10, 5),
		Params: []model.TypedName{
			{Name: "dt", Type: "float"},
			{Name: "combo", Type: "int"},
		},
		Captures: []model.TypedName{{Name: "state", Type: "GameState *"}},
	}
	d := model.NewDocument()
	d.Subscribers = append(d.Subscribers, model.Subscriber{
		EventName: "tick", Callback: cb, Location: loc("src/a.cpp", 10, 3),
	})

	elems := Build(d, nil)
	var sink *Element
	for i := range elems {
		if elems[i].Classes == classCallback {
			sink = &elems[i]
		}
	}
	require.NotNil(t, sink)
	assert.Equal(t, "lambda", sink.Data.Kind)
	assert.Equal(t, "sink_lambda_(lambda at src/a.cpp:10:5)_src/a.cpp:10", sink.Data.ID)
	assert.Equal(t, "float dt, int combo", sink.Data.Params)
	assert.Equal(t, "GameState * state", sink.Data.Captures)
}

func TestBuildSkipsSubscriberWithoutSite(t *testing.T) {
	d := model.NewDocument()
	d.Subscribers = append(d.Subscribers, model.Subscriber{
		EventName: "tick",
		Callback:  model.CallbackTarget{Kind: model.CallbackUnresolved},
	})

	var warnings []string
	elems := Build(d, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	assert.Empty(t, elems)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no usable call site")
}

func TestBuildDropsRecordsWithoutEventName(t *testing.T) {
	d := model.NewDocument()
	d.Publishers = append(d.Publishers, publisher("", loc("p.cpp", 1, 1), "float"))

	var warnings []string
	elems := Build(d, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	assert.Empty(t, elems)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "without an event name")
}

func TestBuildKeepsFirstNodeOnDuplicateSite(t *testing.T) {
	d := model.NewDocument()
	at := loc("p.cpp", 7, 3)
	d.Publishers = append(d.Publishers,
		publisher("tick", at, "float"),
		publisher("tick", at, "float"))

	var warnings []string
	elems := Build(d, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	assert.Equal(t, 1, classCount(elems, "publish"))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "duplicate call site id")
}

func TestEncode(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, Encode(&empty, nil))
	assert.Equal(t, "[]\n", empty.String())

	elems := []Element{{Data: ElementData{ID: "n", Signature: "Foo<int, Bar<float>>"}}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, elems))
	assert.True(t, strings.Contains(buf.String(), "Foo<int, Bar<float>>"))
	assert.False(t, strings.Contains(buf.String(), `\u003c`))
}

func TestBuildGolden(t *testing.T) {
	d := model.NewDocument()
	d.Subscribers = append(d.Subscribers, model.Subscriber{
		EventName: "score.changed",
		EventType: "void (float, int)",
		Callback: model.CallbackTarget{
			Kind:     model.CallbackFreeFunction,
			Name:     "onScore",
			CallSite: loc("hud.cpp", 33, 30),
			DefSite:  loc("hud.cpp", 90, 1),
		},
		Location:          loc("hud.cpp", 33, 5),
		Comment:           "// updates the HUD",
		EnclosingFunction: "Hud::bind",
	})
	d.Publishers = append(d.Publishers, model.Publisher{
		EventName:         "score.changed",
		Args:              []model.PublishedArg{{Literal: "delta", Type: "float"}},
		Location:          loc("game.cpp", 40, 9),
		EnclosingFunction: "Game::addScore",
	})
	d.Registrars = append(d.Registrars,
		model.Registrar{
			EventName:         "score.changed",
			Params:            []string{"float", "int"},
			Location:          loc("events.cpp", 12, 5),
			EnclosingFunction: "registerAll",
		},
		model.Registrar{
			EventName:         "onTick",
			Params:            []string{"float"},
			Location:          loc("events.cpp", 14, 5),
			EnclosingFunction: "registerAll",
		})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(d, nil)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "elements", buf.Bytes())
}
