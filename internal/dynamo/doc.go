// Package dynamo defines the error taxonomy shared by the simulation packages.
//
// Three sentinel errors classify every failure:
//
//   - [ErrInvalidConfiguration]: raised at construction, wrapped by [ConfigError]
//   - [ErrNumericalSingularity]: two distinct bodies at the same position
//   - [ErrSimulationDivergence]: a NaN or Inf appeared in body state
//
// Runtime failures reach the caller wrapped in [StepError] and, for force
// evaluation, [PairError]. Match them with [errors.Is]:
//
//	snap, err := engine.Next()
//	if errors.Is(err, dynamo.ErrNumericalSingularity) {
//	    var pe *dynamo.PairError
//	    errors.As(err, &pe)
//	}
package dynamo
