package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct {
	name     string
	priority int
	order    *[]string
	err      error
}

func (m *fakeModule) Name() string  { return m.name }
func (m *fakeModule) Priority() int { return m.priority }
func (m *fakeModule) Init(ctx *ModuleContext) error {
	*m.order = append(*m.order, m.name)
	return m.err
}

func TestInitModules(t *testing.T) {
	saved := moduleRegistry
	t.Cleanup(func() { moduleRegistry = saved })

	t.Run("initializes by priority", func(t *testing.T) {
		moduleRegistry = make(map[string]Module)
		var order []string
		Register(&fakeModule{name: "payment", priority: 30, order: &order})
		Register(&fakeModule{name: "event", priority: 10, order: &order})
		Register(&fakeModule{name: "coupon", priority: 10, order: &order})
		Register(&fakeModule{name: "booking", priority: 20, order: &order})

		assert.NoError(t, InitModules(&ModuleContext{}))
		assert.Equal(t, []string{"coupon", "event", "booking", "payment"}, order)
		assert.Len(t, GetModules(), 4)
	})

	t.Run("stops on first error", func(t *testing.T) {
		moduleRegistry = make(map[string]Module)
		var order []string
		Register(&fakeModule{name: "event", priority: 10, order: &order, err: errors.New("boom")})
		Register(&fakeModule{name: "booking", priority: 20, order: &order})

		err := InitModules(&ModuleContext{})
		assert.ErrorContains(t, err, "init module event")
		assert.Equal(t, []string{"event"}, order)
	})
}
