package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
)

// luaFactory is the global a script must define. It returns a table whose
// fields are the strategy's methods, all optional except select_card:
//
//	name                          string
//	initialize(self, id)
//	select_card(self, legal, table) -> 1-based index into legal, or nil
//	observe_move(self, id, suit, rank)
//	observe_pass(self, id)
//	destroy(self)
//
// legal is a list of {suit=, rank=} tables; table[suit][rank] is true for
// face-up cards. Suits are 0..3 and ranks 1..13.
const luaFactory = "new_strategy"

type luaModule struct {
	L *lua.LState
}

// OpenLua runs the script at path in a fresh Lua state.
func OpenLua(path string) (Module, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, err
	}
	return &luaModule{L: L}, nil
}

// Lookup maps FactorySymbol to the script's factory global.
func (m *luaModule) Lookup(name string) (any, error) {
	if name != FactorySymbol {
		return nil, fmt.Errorf("symbol %s not exported by lua modules", name)
	}
	fn, ok := m.L.GetGlobal(luaFactory).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("global function %s not defined", luaFactory)
	}
	return Factory(func() strategy.Strategy {
		if err := m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			panic(err)
		}
		ret := m.L.Get(-1)
		m.L.Pop(1)
		self, ok := ret.(*lua.LTable)
		if !ok {
			return nil
		}
		if _, ok := self.RawGetString("select_card").(*lua.LFunction); !ok {
			return nil
		}
		return &luaStrategy{L: m.L, self: self}
	}), nil
}

func (m *luaModule) Close() error {
	m.L.Close()
	return nil
}

// luaStrategy forwards the strategy calls to methods of a Lua table. Script
// errors are swallowed: a failing select_card is a pass.
type luaStrategy struct {
	L    *lua.LState
	self *lua.LTable
}

func (s *luaStrategy) call(method string, nret int, args ...lua.LValue) (lua.LValue, bool) {
	fn, ok := s.self.RawGetString(method).(*lua.LFunction)
	if !ok {
		return lua.LNil, false
	}
	params := append([]lua.LValue{s.self}, args...)
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, params...); err != nil {
		return lua.LNil, false
	}
	if nret == 0 {
		return lua.LNil, true
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, true
}

func (s *luaStrategy) Initialize(playerID int) {
	s.call("initialize", 0, lua.LNumber(playerID))
}

func (s *luaStrategy) SelectCard(legal []cards.Card, table cards.Table) int {
	list := s.L.NewTable()
	for i, c := range legal {
		card := s.L.NewTable()
		card.RawSetString("suit", lua.LNumber(c.Suit))
		card.RawSetString("rank", lua.LNumber(c.Rank))
		list.RawSetInt(i+1, card)
	}

	layout := s.L.NewTable()
	for suit := cards.Suit(0); suit < cards.NumSuits; suit++ {
		ranks := s.L.NewTable()
		for r := cards.MinRank; r <= cards.MaxRank; r++ {
			ranks.RawSetInt(r, lua.LBool(table.IsFaceUp(suit, r)))
		}
		layout.RawSetInt(int(suit), ranks)
	}

	ret, ok := s.call("select_card", 1, list, layout)
	if !ok {
		return strategy.Pass
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return strategy.Pass
	}
	return int(n) - 1
}

func (s *luaStrategy) ObserveMove(playerID int, card cards.Card) {
	s.call("observe_move", 0, lua.LNumber(playerID), lua.LNumber(card.Suit), lua.LNumber(card.Rank))
}

func (s *luaStrategy) ObservePass(playerID int) {
	s.call("observe_pass", 0, lua.LNumber(playerID))
}

func (s *luaStrategy) Name() string {
	if name, ok := s.self.RawGetString("name").(lua.LString); ok {
		return string(name)
	}
	return "LuaStrategy"
}

// Close runs the script's destroy method. The Lua state itself belongs to
// the module and is closed after this.
func (s *luaStrategy) Close() error {
	s.call("destroy", 0)
	return nil
}
