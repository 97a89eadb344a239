// Package output materializes rendered pages under the build directory.
package output

import (
	"path"
	"strconv"
)

// IndexFile is the file name every generated route is written to.
const IndexFile = "index.html"

// Directory names for the generated entity classes.
const (
	CityDir    = "city"
	ProductDir = "product"
)

// CityPath returns city/<slug>/index.html.
func CityPath(slug string) string { return path.Join(CityDir, slug, IndexFile) }

// ProductPath returns product/<id>/index.html.
func ProductPath(id int64) string {
	return path.Join(ProductDir, strconv.FormatInt(id, 10), IndexFile)
}

// StaticPath returns <route>/index.html.
func StaticPath(route string) string { return path.Join(route, IndexFile) }
