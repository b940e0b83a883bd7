package metrics

// Metrics holds embedding API usage for a time period.
type Metrics struct {
	embeddingRequests int
	batchRequests     int
	tokens            int
	costMillidollars  int
}

// New creates a Metrics snapshot. batchRequests counts the subset of
// embeddingRequests that carried more than one input.
func New(requests, batchRequests, tokens, costMillidollars int) Metrics {
	return Metrics{
		embeddingRequests: requests,
		batchRequests:     batchRequests,
		tokens:            tokens,
		costMillidollars:  costMillidollars,
	}
}

// EmbeddingRequests returns the number of embedding API calls.
func (m Metrics) EmbeddingRequests() int { return m.embeddingRequests }

// BatchRequests returns the number of multi-input embedding API calls.
func (m Metrics) BatchRequests() int { return m.batchRequests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }

// CostMillidollars returns cost in millicents (1 USD = 1000).
func (m Metrics) CostMillidollars() int { return m.costMillidollars }
