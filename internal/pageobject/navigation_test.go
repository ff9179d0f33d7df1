package pageobject

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"dashnav/internal/fixtures"
	"dashnav/internal/metrics"
	"dashnav/internal/nav"
	"dashnav/internal/wait"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastOptions() Options {
	return Options{
		BaseURL: "https://dashboard.test:8443/",
		Wait:    wait.Options{Timeout: 150 * time.Millisecond, Interval: 2 * time.Millisecond},
	}
}

func TestVerifyNavigations_DashboardTree(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	h := NewNavigationHelper(dash, fastOptions())

	report, err := h.VerifyNavigations(context.Background(), nav.DashboardTree())
	require.NoError(t, err)
	require.True(t, report.Passed())
	assert.NotEmpty(t, report.RunID)

	// 7 top-level clicks + 17 submenu clicks
	assert.Len(t, report.Steps, 24)
	assert.Empty(t, report.Unchecked())
}

func TestVerifyNavigations_TopLevelOrder(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	h := NewNavigationHelper(dash, fastOptions())

	_, err := h.VerifyNavigations(context.Background(), nav.DashboardTree())
	require.NoError(t, err)

	var top []string
	for _, c := range dash.Clicks() {
		if n, ok := nav.DashboardTree().Find(c); ok && n != nil {
			top = append(top, c)
		}
	}
	want := []string{"NFS", "Object Gateway", "Dashboard", "Cluster", "Pools", "Block", "File Systems"}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("top-level click order mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyNavigations_FullClickSequence(t *testing.T) {
	tree := nav.Tree{
		nav.L("NFS", "cd-error"),
		nav.B("Object Gateway",
			nav.L("Daemons", "cd-rgw-daemon-list"),
			nav.L("Users", "cd-rgw-user-list"),
		),
		nav.L("Pools", "cd-pool-list"),
	}
	dash := newFakeDashboard(tree)
	report, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)

	want := []string{
		"NFS",
		"Object Gateway",
		"Object Gateway > Daemons",
		"Object Gateway > Users",
		"Pools",
	}
	if diff := cmp.Diff(want, dash.Clicks()); diff != "" {
		t.Errorf("click sequence mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, report.Clicks()); diff != "" {
		t.Errorf("report sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyNavigations_InterceptsBeforeFirstClick(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	require.NoError(t, err)

	events := dash.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "intercept", events[0])

	require.Len(t, dash.stubs, 3)
	for _, path := range []string{"/ui-api/nfs-ganesha/status", "/ui-api/rgw/status", "/ui-api/block/rbd/status"} {
		_, ok := fixtures.Lookup(dash.stubs, path)
		assert.True(t, ok, "missing stub for %s", path)
	}
}

func TestVerifyNavigations_NFSRevealsErrorScreen(t *testing.T) {
	tree := nav.Tree{nav.L("NFS", "cd-error")}
	dash := newFakeDashboard(tree)
	report, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)

	require.Len(t, report.Steps, 1)
	assert.Equal(t, "cd-error", report.Steps[0].Component)
	assert.True(t, report.Steps[0].Checked)
	assert.Equal(t, "cd-error", dash.rendered)
}

func TestVerifyNavigations_WrongComponentFails(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.wrongComponent["Pools"] = "cd-error"

	report, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	require.Error(t, err)
	assert.False(t, report.Passed())

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"Pools"}, stepErr.Path)
	assert.Equal(t, "cd-pool-list", stepErr.Component)
	assert.ErrorIs(t, err, wait.ErrTimeout)
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.Contains(t, err.Error(), "navigation Pools: expected cd-pool-list")

	// aborted: Block and File Systems never clicked
	clicks := dash.Clicks()
	assert.Equal(t, "Pools", clicks[len(clicks)-1])
	assert.NotContains(t, clicks, "Block")
	assert.NotContains(t, clicks, "File Systems")
}

func TestVerifyNavigations_MissingMenuFails(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.hiddenLabels["Dashboard"] = true

	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"Dashboard"}, stepErr.Path)
	assert.ErrorIs(t, err, wait.ErrTimeout)
	assert.NotContains(t, dash.Clicks(), "Cluster")
}

func TestVerifyNavigations_MissingSubmenuFails(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.hiddenLabels["Mirroring"] = true

	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"Block", "Mirroring"}, stepErr.Path)
	assert.Equal(t, "cd-mirroring", stepErr.Component)
}

func TestVerifyNavigations_WaitsForLateMarkers(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.lateMarkers = 3

	report, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestVerifyNavigations_ClickErrorFails(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	boom := errors.New("node is detached from document")
	dash.clickErr = boom

	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, wait.ErrTimeout)
}

func TestVerifyNavigations_CancelledContext(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(ctx, nav.DashboardTree())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dash.Clicks())
}

func TestVerifyNavigations_SubmenuComponentChecked(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.wrongComponent["Object Gateway > Daemons"] = "cd-error"

	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), nav.DashboardTree())
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, []string{"Object Gateway", "Daemons"}, stepErr.Path)
	assert.Equal(t, "cd-rgw-daemon-list", stepErr.Component)
}

func TestVerifyNavigations_SkipSubmenuComponents(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	// without the submenu assertion a wrong submenu screen goes unnoticed
	dash.wrongComponent["Object Gateway > Daemons"] = "cd-error"

	opts := fastOptions()
	opts.SkipSubmenuComponents = true
	report, err := NewNavigationHelper(dash, opts).VerifyNavigations(context.Background(), nav.DashboardTree())
	require.NoError(t, err)

	unchecked := report.Unchecked()
	require.Len(t, unchecked, 17)
	assert.Equal(t, []string{"Object Gateway", "Daemons"}, unchecked[0].Path)
	assert.Contains(t, dash.Clicks(), "Object Gateway > Daemons")
}

func TestVerifySubmenu_ScopedToParent(t *testing.T) {
	tree := nav.DashboardTree()
	og, _ := tree.Find("Object Gateway")
	dash := newFakeDashboard(tree)
	h := NewNavigationHelper(dash, fastOptions())

	// children are not reachable until the parent has been expanded
	_, err := h.VerifySubmenu(context.Background(), "Object Gateway", og.(*nav.Branch).Children)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrElementNotFound)

	dash.expanded["Object Gateway"] = true
	report, err := h.VerifySubmenu(context.Background(), "Object Gateway", og.(*nav.Branch).Children)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Object Gateway > Daemons",
		"Object Gateway > Users",
		"Object Gateway > Buckets",
	}, report.Clicks())
}

func TestVerifySubmenu_UsersResolvesWithinParent(t *testing.T) {
	// "Users" also matches "Ceph Users" under Cluster; scope keeps them apart
	tree := nav.DashboardTree()
	dash := newFakeDashboard(tree)
	_, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)

	assert.Contains(t, dash.Clicks(), "Object Gateway > Users")
	assert.Contains(t, dash.Clicks(), "Cluster > Ceph Users")
}

func TestVerifyNavigations_NestedBranch(t *testing.T) {
	tree := nav.Tree{
		nav.B("Cluster",
			nav.B("Storage",
				nav.L("OSDs", "cd-osd-list"),
			),
			nav.L("Hosts", "cd-hosts"),
		),
	}
	dash := newFakeDashboard(tree)
	report, err := NewNavigationHelper(dash, fastOptions()).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cluster",
		"Cluster > Storage",
		"Cluster > Storage > OSDs",
		"Cluster > Hosts",
	}, report.Clicks())
}

func TestVerifyNavigations_Idempotent(t *testing.T) {
	tree := nav.DashboardTree()
	dash := newFakeDashboard(tree)
	h := NewNavigationHelper(dash, fastOptions())

	first, err1 := h.VerifyNavigations(context.Background(), tree)
	second, err2 := h.VerifyNavigations(context.Background(), tree)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.Clicks(), second.Clicks())
	assert.NotEqual(t, first.RunID, second.RunID)

	broken := newFakeDashboard(tree)
	broken.wrongComponent["File Systems"] = "cd-error"
	hb := NewNavigationHelper(broken, fastOptions())
	_, errA := hb.VerifyNavigations(context.Background(), tree)
	_, errB := hb.VerifyNavigations(context.Background(), tree)
	var stepA, stepB *StepError
	require.True(t, errors.As(errA, &stepA))
	require.True(t, errors.As(errB, &stepB))
	assert.Equal(t, stepA.Path, stepB.Path)
	assert.Equal(t, stepA.Component, stepB.Component)
}

func TestVerifyNavigations_Metrics(t *testing.T) {
	rec := metrics.NewRecorder()
	opts := fastOptions()
	opts.Metrics = rec

	tree := nav.DashboardTree()
	_, err := NewNavigationHelper(newFakeDashboard(tree), opts).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)

	assert.Equal(t, 24.0, testutil.ToFloat64(rec.StepsTotal.WithLabelValues(metrics.ResultPassed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.RunsTotal.WithLabelValues(metrics.ResultPassed)))
}

func TestSidebarAndToggle(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	h := NewNavigationHelper(dash, fastOptions())

	sidebar, err := h.Sidebar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sidebar", sidebar.(*fakeElement).kind)

	toggle, err := h.SidebarToggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "toggle", toggle.(*fakeElement).kind)

	// lookups have no side effects
	assert.Empty(t, dash.Events())
}

func TestSidebar_Absent(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	dash.noSidebar = true

	_, err := NewNavigationHelper(dash, fastOptions()).Sidebar(context.Background())
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, err, wait.ErrTimeout)
}

func TestVisit(t *testing.T) {
	dash := newFakeDashboard(nav.DashboardTree())
	h := NewNavigationHelper(dash, fastOptions())

	require.NoError(t, h.Visit(context.Background(), "index"))
	assert.Equal(t, []string{"https://dashboard.test:8443/#/dashboard"}, dash.navTo)

	err := h.Visit(context.Background(), "nope")
	assert.Error(t, err)
}

func TestVisit_BadBaseURL(t *testing.T) {
	opts := fastOptions()
	opts.BaseURL = "not a url"
	err := NewNavigationHelper(newFakeDashboard(nil), opts).Visit(context.Background(), "index")
	assert.Error(t, err)
}

func TestNewNavigationHelper_Defaults(t *testing.T) {
	h := NewNavigationHelper(newFakeDashboard(nil), Options{})
	assert.Equal(t, wait.DefaultTimeout, h.opts.Wait.Timeout)
	assert.Equal(t, wait.DefaultInterval, h.opts.Wait.Interval)
	assert.Equal(t, "nav[id=sidebar]", h.opts.Selectors.Sidebar)
	assert.Len(t, h.opts.Stubs, 3)
}

func TestReport_WriteText(t *testing.T) {
	tree := nav.Tree{nav.L("NFS", "cd-error"), nav.B("Block", nav.L("iSCSI", "cd-iscsi"))}
	opts := fastOptions()
	opts.SkipSubmenuComponents = true
	report, err := NewNavigationHelper(newFakeDashboard(tree), opts).VerifyNavigations(context.Background(), tree)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "NFS")
	assert.Contains(t, out, "expanded")
	assert.Contains(t, out, "unchecked")
	assert.Contains(t, out, "PASSED")
}
