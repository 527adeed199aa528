// Package ais holds the data model shared by every stage of the AIS
// position pipeline: the raw decoded table, cleaned positions, cluster
// assignments, and the error taxonomy used to abort a run.
//
// Stage packages live underneath:
//
//	ingest   encoding-tolerant table decoding
//	clean    coordinate validation and the map centroid
//	cluster  feature standardization and DBSCAN
//	render   map canvases and artifact output
//	pipeline wiring of the stages into a single run
//
// Rows are independent spatial samples. Nothing in this tree models
// vessel identity or tracks.
package ais
