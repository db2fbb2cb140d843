// Package tree provides the immutable in-memory model of a structured,
// element-keyed document such as a lexicon.
//
// # Nodes
//
// A Node is an element with a tag name, an ordered list of attributes, an
// optional text value and an ordered list of children. Nodes are immutable:
// constructors copy their inputs and accessors return copies, so a subtree may
// be shared freely between documents and goroutines.
//
//	entry := tree.New("entry", tree.Attrs("id", "cat_1"),
//	    tree.New("lexical-unit", nil,
//	        tree.NewText("form", tree.Attrs("lang", "en"), "cat"),
//	    ),
//	)
//
// Mixed content (text interleaved with elements) is represented with child
// nodes tagged TextTag, created by TextNode. A node never carries both a text
// value and children.
//
// # Identity
//
// Nothing in this package decides whether two nodes from different documents
// are "the same" node; that is the job of the match package. Equal and Hash
// only answer whether two subtrees have identical content.
//
// # Paths
//
// A Path addresses a node from the document root as a sequence of tag and
// 1-based same-tag sibling index steps, rendered XPath style:
//
//	/lift/entry[2]/sense[1]
package tree
