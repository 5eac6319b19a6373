package chttp

// Method describes one routable method of a handler type: its verb/path metadata, the specs of
// its declared parameters and the compiled invocation closure that binds arguments in declaration
// order before calling the method. Build instances with [M0] through [M4].
type Method[H any] struct {
	verb   string
	path   string
	specs  []ParamSpec
	errs   []error
	invoke func(H, *Ctx) (Return, error)
}

// Verb returns the method's verb, empty means it matches any verb.
func (m Method[H]) Verb() string { return m.verb }

// Path returns the method's path template, empty means it matches any path.
func (m Method[H]) Path() string { return m.path }

// Params returns the declared parameter specs in order.
func (m Method[H]) Params() []ParamSpec { return m.specs }

func collectSpec[H any](m *Method[H], spec ParamSpec, err error) {
	m.specs = append(m.specs, spec)
	if err != nil {
		m.errs = append(m.errs, err)
	}
}

// M0 declares a method without parameters.
func M0[H any](verb, path string, fn func(H) (Return, error)) Method[H] {
	return Method[H]{verb: verb, path: path, invoke: func(h H, _ *Ctx) (Return, error) {
		return fn(h)
	}}
}

// M1 declares a method with one bound parameter.
func M1[H, A any](verb, path string, pa Param[A], fn func(H, A) (Return, error)) Method[H] {
	m := Method[H]{verb: verb, path: path}
	collectSpec(&m, pa.spec, pa.err)

	m.invoke = func(h H, c *Ctx) (Return, error) {
		a, err := pa.bind(c)
		if err != nil {
			return nil, err
		}

		return fn(h, a)
	}

	return m
}

// M2 declares a method with two bound parameters.
func M2[H, A, B any](verb, path string, pa Param[A], pb Param[B], fn func(H, A, B) (Return, error)) Method[H] {
	m := Method[H]{verb: verb, path: path}
	collectSpec(&m, pa.spec, pa.err)
	collectSpec(&m, pb.spec, pb.err)

	m.invoke = func(h H, c *Ctx) (Return, error) {
		a, err := pa.bind(c)
		if err != nil {
			return nil, err
		}

		b, err := pb.bind(c)
		if err != nil {
			return nil, err
		}

		return fn(h, a, b)
	}

	return m
}

// M3 declares a method with three bound parameters.
func M3[H, A, B, C any](
	verb, path string,
	pa Param[A], pb Param[B], pc Param[C],
	fn func(H, A, B, C) (Return, error),
) Method[H] {
	m := Method[H]{verb: verb, path: path}
	collectSpec(&m, pa.spec, pa.err)
	collectSpec(&m, pb.spec, pb.err)
	collectSpec(&m, pc.spec, pc.err)

	m.invoke = func(h H, c *Ctx) (Return, error) {
		a, err := pa.bind(c)
		if err != nil {
			return nil, err
		}

		b, err := pb.bind(c)
		if err != nil {
			return nil, err
		}

		cc, err := pc.bind(c)
		if err != nil {
			return nil, err
		}

		return fn(h, a, b, cc)
	}

	return m
}

// M4 declares a method with four bound parameters.
func M4[H, A, B, C, D any](
	verb, path string,
	pa Param[A], pb Param[B], pc Param[C], pd Param[D],
	fn func(H, A, B, C, D) (Return, error),
) Method[H] {
	m := Method[H]{verb: verb, path: path}
	collectSpec(&m, pa.spec, pa.err)
	collectSpec(&m, pb.spec, pb.err)
	collectSpec(&m, pc.spec, pc.err)
	collectSpec(&m, pd.spec, pd.err)

	m.invoke = func(h H, c *Ctx) (Return, error) {
		a, err := pa.bind(c)
		if err != nil {
			return nil, err
		}

		b, err := pb.bind(c)
		if err != nil {
			return nil, err
		}

		cc, err := pc.bind(c)
		if err != nil {
			return nil, err
		}

		d, err := pd.bind(c)
		if err != nil {
			return nil, err
		}

		return fn(h, a, b, cc, d)
	}

	return m
}
