package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evsys/eventlint/internal/testutil"
)

func TestWalkUnitEnclosingFunction(t *testing.T) {
	pubA := testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/a.cpp", 5, 3),
		testutil.NameArg(testutil.Loc("/proj/a.cpp", 5, 12), "kA"))
	pubB := testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/a.cpp", 12, 3),
		testutil.NameArg(testutil.Loc("/proj/a.cpp", 12, 12), "kB"))

	tu := testutil.TU(
		testutil.Fn("setup", testutil.Loc("/proj/a.cpp", 3, 1), pubA),
		testutil.Method("update", testutil.Loc("/proj/a.cpp", 10, 1), pubB),
	)

	res := WalkUnit(tu, Options{
		Match:    DefaultMatchConfig(),
		ReadFile: func(string) ([]byte, error) { return nil, nil },
	})

	require.Len(t, res.Publishers, 2)
	assert.Equal(t, "setup", res.Publishers[0].EnclosingFunction)
	assert.Equal(t, "update", res.Publishers[1].EnclosingFunction)
}

func TestWalkUnitProjectRootFilter(t *testing.T) {
	inside := testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/src/a.cpp", 5, 3),
		testutil.NameArg(testutil.Loc("/proj/src/a.cpp", 5, 12), "kIn"))
	outside := testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/usr/include/vendor.h", 90, 3),
		testutil.NameArg(testutil.Loc("/usr/include/vendor.h", 90, 12), "kOut"))

	tu := testutil.TU(
		testutil.Fn("setup", testutil.Loc("/proj/src/a.cpp", 3, 1), inside),
		testutil.Fn("vendorSetup", testutil.Loc("/usr/include/vendor.h", 88, 1), outside),
	)

	res := WalkUnit(tu, Options{
		ProjectRoot: "/proj",
		Match:       DefaultMatchConfig(),
		ReadFile:    func(string) ([]byte, error) { return nil, nil },
	})

	require.Len(t, res.Publishers, 1)
	assert.Equal(t, "kIn", res.Publishers[0].EventName)
}

func TestWalkUnitNestedSubtreeStillVisited(t *testing.T) {
	// The filtered header function contains a project-file call; skipping
	// the node must not skip its subtree.
	nested := testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/gen.cpp", 7, 3),
		testutil.NameArg(testutil.Loc("/proj/gen.cpp", 7, 12), "kGen"))
	tu := testutil.TU(
		testutil.Fn("template_fn", testutil.Loc("/usr/include/tmpl.h", 2, 1), nested),
	)

	res := WalkUnit(tu, Options{
		ProjectRoot: "/proj",
		Match:       DefaultMatchConfig(),
		ReadFile:    func(string) ([]byte, error) { return nil, nil },
	})

	require.Len(t, res.Publishers, 1)
	assert.Equal(t, "kGen", res.Publishers[0].EventName)
	assert.Empty(t, res.Publishers[0].EnclosingFunction,
		"a filtered declaration does not become the enclosing function")
}

func TestWalkUnitRecordsInVisitationOrder(t *testing.T) {
	calls := []string{"kFirst", "kSecond", "kThird"}
	fn := testutil.Fn("setup", testutil.Loc("/proj/a.cpp", 1, 1),
		testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/a.cpp", 2, 3),
			testutil.NameArg(testutil.Loc("/proj/a.cpp", 2, 12), calls[0])),
		testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/a.cpp", 3, 3),
			testutil.NameArg(testutil.Loc("/proj/a.cpp", 3, 12), calls[1])),
		testutil.EventCall("publish", "ES::EventSystem", testutil.Loc("/proj/a.cpp", 4, 3),
			testutil.NameArg(testutil.Loc("/proj/a.cpp", 4, 12), calls[2])),
	)

	res := WalkUnit(testutil.TU(fn), Options{
		Match:    DefaultMatchConfig(),
		ReadFile: func(string) ([]byte, error) { return nil, nil },
	})

	require.Len(t, res.Publishers, 3)
	for i, want := range calls {
		assert.Equal(t, want, res.Publishers[i].EventName)
	}
}

func TestWalkUnitNilRoot(t *testing.T) {
	res := WalkUnit(nil, Options{Match: DefaultMatchConfig()})
	assert.NotNil(t, res.Publishers)
	assert.NotNil(t, res.Subscribers)
	assert.NotNil(t, res.Registrars)
	assert.NotNil(t, res.DirectCalls)
	assert.Empty(t, res.Publishers)
}
