// Copyright © 2024 The rsresolve authors

package resolve

import "github.com/luthersystems/rsresolve/testcrumb"

var (
	crumbNotYetVisible    = testcrumb.New("binding not visible at reference")
	crumbItemBoundary     = testcrumb.New("local name hidden by item boundary")
	crumbGlobMatch        = testcrumb.New("name found through glob import")
	crumbImportFollowed   = testcrumb.New("import followed to its target")
	crumbImportUnresolved = testcrumb.New("import target unresolved")
	crumbImportCycle      = testcrumb.New("import cycle cut")
	crumbImportDepth      = testcrumb.New("import depth limit reached")
	crumbNotNamespace     = testcrumb.New("path prefix is not a namespace")
	crumbMissingSegment   = testcrumb.New("path segment not found")
)
