// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package htmlutil has small helpers for working with x/net/html document
// trees.
package htmlutil

import (
	"golang.org/x/net/html"
)

// VisitHTML walks the tree rooted at node, calling before on the way down and
// after on the way up.
func VisitHTML(node *html.Node, before, after func(*html.Node) error) error {
	if before != nil {
		if err := before(node); err != nil {
			return err
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := VisitHTML(child, before, after); err != nil {
			return err
		}
	}
	if after != nil {
		if err := after(node); err != nil {
			return err
		}
	}
	return nil
}

// GetAttr looks up an attribute on an element node.
func GetAttr(node *html.Node, namespace, name string) (val string, ok bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == namespace && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// Text returns the concatenated text content beneath node.
func Text(node *html.Node) string {
	var ret string
	_ = VisitHTML(node, nil, func(child *html.Node) error {
		if child.Type == html.TextNode {
			ret += child.Data
		}
		return nil
	})
	return ret
}
