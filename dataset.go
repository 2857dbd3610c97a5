package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/urbanlab/siting/planner"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func readJSONRows[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

// loadRows fetches one input table, either straight from a JSON file or
// from a mongo collection with an optional JSON cache in between. The
// client is only dialed when a collection actually has to be read.
func loadRows[T any](lazyClient func() *mongo.Client, p *Path, cacheDir string) ([]T, error) {
	if p.File != "" {
		return readJSONRows[T](p.File)
	}
	var cachePath string
	if cacheDir != "" {
		cachePath = filepath.Join(cacheDir, p.GetCachePath())
		if rows, err := readJSONRows[T](cachePath); err == nil {
			log.Debugf("loaded %s from cache %s", p, cachePath)
			return rows, nil
		}
	}
	coll := mongoutil.GetMongoColl(lazyClient(), p)
	cur, err := coll.Find(context.Background(), bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", p, err)
	}
	var rows []T
	if err := cur.All(context.Background(), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p, err)
	}
	if cachePath != "" {
		if data, err := json.Marshal(rows); err == nil {
			if err := os.WriteFile(cachePath, data, 0o644); err != nil {
				log.Warnf("failed to write cache %s: %v", cachePath, err)
			}
		}
	}
	return rows, nil
}

// loadDataset pulls the three input tables through one shared client.
func loadDataset(mongoURI string, demandPath, facilityPath, edgePath *Path, cacheDir string) (*planner.Dataset, error) {
	var client *mongo.Client
	lazyClient := func() *mongo.Client {
		if client == nil {
			client = mongoutil.NewClient(mongoURI)
		}
		return client
	}
	defer func() {
		if client != nil {
			client.Disconnect(context.Background())
		}
	}()

	demand, err := loadRows[planner.DemandRow](lazyClient, demandPath, cacheDir)
	if err != nil {
		return nil, err
	}
	facilities, err := loadRows[planner.FacilityRow](lazyClient, facilityPath, cacheDir)
	if err != nil {
		return nil, err
	}
	edges, err := loadRows[planner.EdgeRow](lazyClient, edgePath, cacheDir)
	if err != nil {
		return nil, err
	}
	log.Infof("dataset loaded: %d tracts, %d facilities, %d edges", len(demand), len(facilities), len(edges))
	return &planner.Dataset{
		Demand:     demand,
		Facilities: facilities,
		Edges:      edges,
	}, nil
}
