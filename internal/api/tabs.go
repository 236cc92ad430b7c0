package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// Tabs is the partition.Repository and orphan.Repository of the server.
type Tabs struct {
	c *Client
}

// Tabs returns the tab endpoints of the client.
func (c *Client) Tabs() *Tabs {
	return &Tabs{c: c}
}

func tabsPath(family partition.Family) string {
	return "/" + string(family) + "-tabs"
}

type createTabRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type renameTabRequest struct {
	Name string `json:"name"`
}

type adoptRequest struct {
	Username string `json:"username"`
}

// CountResponse is the body of the orphan count endpoint.
type CountResponse struct {
	Count int `json:"count"`
}

// AdoptResponse is the body of the adopt endpoint.
type AdoptResponse struct {
	Adopted int `json:"adopted"`
}

// List fetches the user's tabs, oldest first.
func (t *Tabs) List(ctx context.Context, family partition.Family, userID string) ([]partition.Partition, error) {
	q := url.Values{"username": {userID}}
	if t.c.role != "" {
		q.Set("role", t.c.role)
	}
	var out []partition.Partition
	if err := t.c.do(ctx, http.MethodGet, tabsPath(family), q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []partition.Partition{}
	}
	return out, nil
}

// Create creates a tab.
func (t *Tabs) Create(ctx context.Context, family partition.Family, name, userID string) (*partition.Partition, error) {
	var out partition.Partition
	err := t.c.do(ctx, http.MethodPost, tabsPath(family), nil, createTabRequest{Name: name, Username: userID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Rename renames a tab.
func (t *Tabs) Rename(ctx context.Context, family partition.Family, userID, id, name string) error {
	q := url.Values{"username": {userID}}
	return t.c.do(ctx, http.MethodPut, tabsPath(family)+"/"+url.PathEscape(id), q, renameTabRequest{Name: name}, nil)
}

// Delete deletes a tab under the given record policy.
func (t *Tabs) Delete(ctx context.Context, family partition.Family, userID, id string, policy partition.DeletePolicy) error {
	q := url.Values{"username": {userID}, "policy": {string(policy)}}
	return t.c.do(ctx, http.MethodDelete, tabsPath(family)+"/"+url.PathEscape(id), q, nil, nil)
}

// CountOrphans counts the user's records that have no tab.
func (t *Tabs) CountOrphans(ctx context.Context, family partition.Family, userID string) (int, error) {
	var out CountResponse
	q := url.Values{"username": {userID}}
	if err := t.c.do(ctx, http.MethodGet, tabsPath(family)+"/orphaned", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Adopt moves every orphan of the user into the tab.
func (t *Tabs) Adopt(ctx context.Context, family partition.Family, userID, partitionID string) (int, error) {
	var out AdoptResponse
	path := tabsPath(family) + "/" + url.PathEscape(partitionID) + "/adopt"
	if err := t.c.do(ctx, http.MethodPost, path, nil, adoptRequest{Username: userID}, &out); err != nil {
		return 0, err
	}
	return out.Adopted, nil
}
