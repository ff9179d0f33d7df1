package nav

import "sort"

// Page describes a route the helper can visit directly and the marker that
// is present once the route is active.
type Page struct {
	Name   string
	URL    string
	Marker string
}

var pages = map[string]Page{
	"index": {Name: "index", URL: "#/dashboard", Marker: "cd-dashboard"},
}

// LookupPage returns the named page descriptor.
func LookupPage(name string) (Page, bool) {
	p, ok := pages[name]
	return p, ok
}

// PageNames lists the known page names.
func PageNames() []string {
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DashboardTree returns the expected sidebar of the storage dashboard.
// A fresh copy is built on every call, so callers may not affect each other.
func DashboardTree() Tree {
	return Tree{
		L("NFS", "cd-error"),
		B("Object Gateway",
			L("Daemons", "cd-rgw-daemon-list"),
			L("Users", "cd-rgw-user-list"),
			L("Buckets", "cd-rgw-bucket-list"),
		),
		L("Dashboard", "cd-dashboard"),
		B("Cluster",
			L("Hosts", "cd-hosts"),
			L("Physical Disks", "cd-error"),
			L("Monitors", "cd-monitor"),
			L("Services", "cd-error"),
			L("OSDs", "cd-osd-list"),
			L("Configuration", "cd-configuration"),
			L("CRUSH map", "cd-crushmap"),
			L("Manager Modules", "cd-mgr-module-list"),
			L("Ceph Users", "cd-crud-table"),
			L("Logs", "cd-logs"),
			L("Alerts", "cd-prometheus-tabs"),
		),
		L("Pools", "cd-pool-list"),
		B("Block",
			L("Images", "cd-error"),
			L("Mirroring", "cd-mirroring"),
			L("iSCSI", "cd-iscsi"),
		),
		L("File Systems", "cd-cephfs-list"),
	}
}
