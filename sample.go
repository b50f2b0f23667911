package ganblr

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/bayesnet"
	"github.com/sw965/ganblr/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"
)

// nodeNames returns "0".."n-1" for the features followed by "n" for the class.
func nodeNames(numFeatures int) []string {
	names := make([]string, numFeatures+1)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// network assembles the kDB Bayesian network described by tables.
func (m *Model) network(tables ProbabilityTables) (*bayesnet.Network, []string, error) {
	d := m.data
	enc := d.Encoder()
	names := nodeNames(d.NumFeatures)
	classNode := names[d.NumFeatures]

	edges := make([][2]string, len(enc.Edges))
	for i, e := range enc.Edges {
		edges[i] = [2]string{names[e.Parent], names[e.Child]}
	}
	net, err := bayesnet.NewNetwork(names, edges)
	if err != nil {
		return nil, nil, err
	}

	cpds := make([]*bayesnet.TabularCPD, 0, len(names))
	classCPD, err := bayesnet.NewTabularCPD(classNode, d.NumClasses, mat.NewDense(d.NumClasses, 1, tables.Class), nil, nil)
	if err != nil {
		return nil, nil, err
	}
	cpds = append(cpds, classCPD)

	for f, table := range tables.Features {
		evidence := []string{classNode}
		evidenceCard := []int{d.NumClasses}
		for _, p := range enc.Dependencies[f] {
			evidence = append(evidence, names[p])
			evidenceCard = append(evidenceCard, d.FeatureUniques[p])
		}
		cpd, err := bayesnet.NewTabularCPD(names[f], d.FeatureUniques[f], table, evidence, evidenceCard)
		if err != nil {
			return nil, nil, err
		}
		cpds = append(cpds, cpd)
	}

	if err := net.AddCPDs(cpds...); err != nil {
		return nil, nil, err
	}
	return net, names, nil
}

// sample draws rows from the network of the current weights. The network
// is rebuilt on every call.
func (m *Model) sample(size int) ([][]int, []int, error) {
	tables, err := Reconstruct(m.weights, m.data)
	if err != nil {
		return nil, nil, err
	}
	net, names, err := m.network(tables)
	if err != nil {
		return nil, nil, err
	}
	samples, err := net.ForwardSample(size, m.rng)
	if err != nil {
		return nil, nil, err
	}
	rows, err := samples.Columns(names...)
	if err != nil {
		return nil, nil, err
	}

	numFeatures := m.data.NumFeatures
	x := make([][]int, len(rows))
	y := make([]int, len(rows))
	for i, row := range rows {
		x[i] = row[:numFeatures:numFeatures]
		y[i] = row[numFeatures]
	}
	return x, y, nil
}

func (m *Model) sampleSize(size int) (int, error) {
	if m.state != Fitted {
		return 0, ErrNotFitted
	}
	if size < 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "sample size must be >= 0, got %d", size)
	}
	if size == 0 {
		return m.data.DataSize, nil
	}
	return size, nil
}

// Sample generates size synthetic rows and their labels. A size of 0 means
// the number of training rows.
func (m *Model) Sample(size int) ([][]int, []int, error) {
	n, err := m.sampleSize(size)
	if err != nil {
		return nil, nil, err
	}
	m.logger.WithField("rows", n).Debug("sampling")
	return m.sample(n)
}

// SampleOneHot is Sample with every feature one-hot encoded over its
// training cardinality, features concatenated in order.
func (m *Model) SampleOneHot(size int) ([]blas32.Vector, []int, error) {
	x, y, err := m.Sample(size)
	if err != nil {
		return nil, nil, err
	}

	width := 0
	for _, card := range m.data.FeatureUniques {
		width += card
	}
	xs := make([]blas32.Vector, len(x))
	for i, row := range x {
		vec := vector.NewZeros(width)
		offset := 0
		for f, v := range row {
			vec.Data[offset+v] = 1.0
			offset += m.data.FeatureUniques[f]
		}
		xs[i] = vec
	}
	return xs, y, nil
}
