// Package render draws a stacked chart as SVG and as an HTML page.
//
// Geometry is computed once by Compute and shared by both outputs: bars sit on
// a band scale over the months, the y scale spans the extent of every stacked
// offset, and the legend lists every vaccine in the dataset so colours stay
// stable across locations.
package render
