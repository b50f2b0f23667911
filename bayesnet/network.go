package bayesnet

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat/distuv"
)

// CPDTolerance bounds how far a CPD column sum may drift from 1.
const CPDTolerance = 1e-6

type Network struct {
	graph *simple.DirectedGraph
	ids   map[string]int64
	names []string
	cpds  map[string]*TabularCPD
}

func NewNetwork(nodes []string, edges [][2]string) (*Network, error) {
	n := &Network{
		graph: simple.NewDirectedGraph(),
		ids:   map[string]int64{},
		cpds:  map[string]*TabularCPD{},
	}
	for _, name := range nodes {
		n.AddNode(name)
	}
	for _, e := range edges {
		if err := n.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// AddNode registers name. Adding an existing node is a no-op.
func (n *Network) AddNode(name string) {
	if _, ok := n.ids[name]; ok {
		return
	}
	id := int64(len(n.names))
	n.ids[name] = id
	n.names = append(n.names, name)
	n.graph.AddNode(simple.Node(id))
}

func (n *Network) AddEdge(parent, child string) error {
	if parent == child {
		return errors.Wrapf(ErrStructuralMismatch, "self loop on %s", parent)
	}
	n.AddNode(parent)
	n.AddNode(child)
	from, to := n.ids[parent], n.ids[child]
	if n.graph.HasEdgeFromTo(from, to) {
		return nil
	}
	n.graph.SetEdge(n.graph.NewEdge(simple.Node(from), simple.Node(to)))
	if _, err := n.TopologicalOrder(); err != nil {
		n.graph.RemoveEdge(from, to)
		return errors.Wrapf(err, "edge %s -> %s", parent, child)
	}
	return nil
}

// Parents returns the direct parents of name in insertion order.
func (n *Network) Parents(name string) []string {
	id, ok := n.ids[name]
	if !ok {
		return nil
	}
	ids := make([]int64, 0)
	it := n.graph.To(id)
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	parents := make([]string, len(ids))
	for i, pid := range ids {
		parents[i] = n.names[pid]
	}
	return parents
}

// AddCPDs attaches cpds and adds an edge from every evidence variable to
// the CPD's variable. Evidence variables must already be nodes.
func (n *Network) AddCPDs(cpds ...*TabularCPD) error {
	for _, cpd := range cpds {
		if _, ok := n.ids[cpd.Variable]; !ok {
			return errors.Wrapf(ErrStructuralMismatch, "CPD for unknown node %s", cpd.Variable)
		}
		for _, e := range cpd.Evidence {
			if _, ok := n.ids[e]; !ok {
				return errors.Wrapf(ErrStructuralMismatch, "%s: unknown evidence node %s", cpd.Variable, e)
			}
		}
		for _, e := range cpd.Evidence {
			if err := n.AddEdge(e, cpd.Variable); err != nil {
				return err
			}
		}
		n.cpds[cpd.Variable] = cpd
	}
	return nil
}

// CheckModel verifies that every node has a stochastic CPD whose evidence
// equals the node's parents with matching cardinalities.
func (n *Network) CheckModel() error {
	for _, name := range n.names {
		cpd, ok := n.cpds[name]
		if !ok {
			return errors.Wrapf(ErrStructuralMismatch, "node %s has no CPD", name)
		}

		parents := n.Parents(name)
		evidence := slices.Clone(cpd.Evidence)
		slices.Sort(evidence)
		sortedParents := slices.Clone(parents)
		slices.Sort(sortedParents)
		if !slices.Equal(evidence, sortedParents) {
			return errors.Wrapf(ErrStructuralMismatch, "%s: evidence %v does not match parents %v", name, cpd.Evidence, parents)
		}

		for i, e := range cpd.Evidence {
			parent, ok := n.cpds[e]
			if !ok {
				return errors.Wrapf(ErrStructuralMismatch, "node %s has no CPD", e)
			}
			if parent.Cardinality != cpd.EvidenceCard[i] {
				return errors.Wrapf(ErrStructuralMismatch, "%s: evidence %s has cardinality %d, CPD says %d", name, e, parent.Cardinality, cpd.EvidenceCard[i])
			}
		}

		if err := cpd.checkStochastic(CPDTolerance); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder sorts the nodes so that parents precede children. Ties
// are resolved by insertion order so the result is deterministic.
func (n *Network) TopologicalOrder() ([]string, error) {
	sorted, err := topo.SortStabilized(n.graph, func(nodes []graph.Node) {
		slices.SortFunc(nodes, func(a, b graph.Node) int {
			return int(a.ID() - b.ID())
		})
	})
	if err != nil {
		return nil, errors.Wrap(ErrStructuralMismatch, err.Error())
	}
	order := make([]string, len(sorted))
	for i, node := range sorted {
		order[i] = n.names[node.ID()]
	}
	return order, nil
}

// Samples holds sampled rows with one column per node.
type Samples struct {
	Names []string
	Rows  [][]int
}

// Columns returns the rows restricted to and reordered by names.
func (s Samples) Columns(names ...string) ([][]int, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx := slices.Index(s.Names, name)
		if idx < 0 {
			return nil, errors.Wrapf(ErrStructuralMismatch, "no sampled column %s", name)
		}
		idxs[i] = idx
	}

	out := make([][]int, len(s.Rows))
	for r, row := range s.Rows {
		out[r] = make([]int, len(idxs))
		for i, idx := range idxs {
			out[r][i] = row[idx]
		}
	}
	return out, nil
}

// ForwardSample draws size joint samples by visiting nodes in topological
// order and drawing each one from the CPD column selected by its already
// sampled evidence.
func (n *Network) ForwardSample(size int, rng *rand.Rand) (Samples, error) {
	if size < 0 {
		return Samples{}, errors.Errorf("bayesnet: negative sample size %d", size)
	}
	if err := n.CheckModel(); err != nil {
		return Samples{}, err
	}
	order, err := n.TopologicalOrder()
	if err != nil {
		return Samples{}, err
	}

	position := make(map[string]int, len(order))
	for i, name := range order {
		position[name] = i
	}

	rows := make([][]int, size)
	for r := range rows {
		rows[r] = make([]int, len(order))
	}

	for i, name := range order {
		cpd := n.cpds[name]
		evidenceIdxs := make([]int, len(cpd.Evidence))
		for j, e := range cpd.Evidence {
			evidenceIdxs[j] = position[e]
		}

		dists := map[int]distuv.Categorical{}
		assignment := make([]int, len(evidenceIdxs))
		for _, row := range rows {
			for j, idx := range evidenceIdxs {
				assignment[j] = row[idx]
			}
			col := cpd.ColumnIndex(assignment)
			dist, ok := dists[col]
			if !ok {
				dist = distuv.NewCategorical(cpd.Distribution(col), rng)
				dists[col] = dist
			}
			row[i] = int(dist.Rand())
		}
	}
	return Samples{Names: order, Rows: rows}, nil
}
