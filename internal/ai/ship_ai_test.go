package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

const eps = 1e-9

type fakeScore struct {
	total int
	calls int
}

func (s *fakeScore) AddScore(delta int) int {
	s.calls++
	s.total += delta
	if s.total < 0 {
		s.total = 0
	}
	return s.total
}

// testParams disables the spawn jitter so orbit angles are predictable.
func testParams() Params {
	p := DefaultParams()
	p.SpawnOrbitJitter = 0
	return p
}

func newTestTurret() *model.Turret {
	return model.NewTurret(0x10000001, "turret", model.Vec3{}, 100)
}

func newTestAI(t testing.TB, id uint32, pos model.Vec3, turret *model.Turret, score *fakeScore) *ShipAI {
	t.Helper()

	ship := model.NewShip(id, model.DefaultShipTemplate(), pos)
	var target Target
	if turret != nil {
		target = turret
	}
	var sink ScoreSink
	if score != nil {
		sink = score
	}
	ai := NewShipAI(ship, testParams(), target, sink)
	ai.Initialize(pos)
	ai.Start()
	require.Equal(t, model.ShipStatePatrol, ai.State())
	return ai
}

func snapshotOf(ships []*model.Ship, bullets ...*model.Bullet) *world.Snapshot {
	return world.NewSnapshot(world.DefaultCellSize, ships, bullets)
}

func emptyView() *world.Snapshot {
	return snapshotOf(nil)
}

// enterAttack drives a fresh patrolling controller into Attack.
func enterAttack(t *testing.T, ai *ShipAI) {
	t.Helper()
	ai.Tick(ai.tmpl.AttackCooldown, emptyView())
	require.Equal(t, model.ShipStateAttack, ai.State())
}

// enterEvade drives a patrolling controller into Evade with a close threat.
func enterEvade(t *testing.T, ai *ShipAI) {
	t.Helper()
	pos := ai.ship.Position()
	bullet := model.NewBullet(0x30000001, pos.Add(model.NewVec3(0, 0, 2)), model.NewVec3(0, 0, -1), 10, 0)
	ai.Tick(0.1, snapshotOf(nil, bullet))
	require.Equal(t, model.ShipStateEvade, ai.State())
}

func TestShipAI_StartLeavesSpawning(t *testing.T) {
	ship := model.NewShip(0x20000001, model.DefaultShipTemplate(), model.NewVec3(5, 0, 0))
	ai := NewShipAI(ship, testParams(), newTestTurret(), nil)

	assert.Equal(t, model.ShipStateSpawning, ai.State())

	ai.Start()
	assert.Equal(t, model.ShipStatePatrol, ai.State())
	assert.Equal(t, uint64(1), ai.TransitionCount())

	// Second Start does not re-enter Patrol
	ai.Start()
	assert.Equal(t, uint64(1), ai.TransitionCount())
}

func TestShipAI_TickBeforeStartIsNoop(t *testing.T) {
	ship := model.NewShip(0x20000001, model.DefaultShipTemplate(), model.NewVec3(5, 0, 0))
	ai := NewShipAI(ship, testParams(), newTestTurret(), nil)

	ai.Tick(5, emptyView())
	ai.PhysicsStep(0.02)

	assert.Equal(t, model.ShipStateSpawning, ai.State())
	assert.True(t, ship.Velocity().IsZero())
}

func TestShipAI_Initialize(t *testing.T) {
	tests := []struct {
		name   string
		spawn  model.Vec3
		jitter float64
		min    float64
		max    float64
	}{
		{"east no jitter", model.NewVec3(10, 0, 0), 0, 0, 0},
		{"north no jitter", model.NewVec3(0, 0, 10), 0, 90, 90},
		{"west no jitter", model.NewVec3(-10, 0, 0), 0, 180, 180},
		{"north with jitter", model.NewVec3(0, 0, 10), 30, 60, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ship := model.NewShip(0x20000001, model.DefaultShipTemplate(), model.Vec3{})
			params := testParams()
			params.SpawnOrbitJitter = tt.jitter

			ai := NewShipAI(ship, params, newTestTurret(), nil)
			ai.Initialize(tt.spawn)

			assert.Equal(t, tt.spawn, ship.Position())
			assert.GreaterOrEqual(t, ai.OrbitAngle(), tt.min-eps)
			assert.LessOrEqual(t, ai.OrbitAngle(), tt.max+eps)
		})
	}
}

func TestShipAI_SetPointsOnDestroy(t *testing.T) {
	score := &fakeScore{}
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), score)

	ai.SetPointsOnDestroy(40)
	require.True(t, ai.OnThreatContact(nil))

	assert.Equal(t, 40, score.total)
}

func TestShipAI_AttackWhenReady(t *testing.T) {
	turret := model.NewTurret(0x10000001, "turret", model.NewVec3(1, 0, 2), 100)
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)

	ai.Tick(2, emptyView())

	assert.Equal(t, model.DecisionAttackTarget, ai.LastDecision())
	assert.Equal(t, model.ShipStateAttack, ai.State())
	assert.Equal(t, turret.Location(), ai.TargetPosition())
}

func TestShipAI_NoAttackBeforeCooldown(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)

	ai.Tick(1.5, emptyView())

	assert.Equal(t, model.DecisionKeepCourse, ai.LastDecision())
	assert.Equal(t, model.ShipStatePatrol, ai.State())
}

func TestShipAI_EvadeThreat(t *testing.T) {
	tests := []struct {
		name      string
		bulletDir model.Vec3
	}{
		{"perpendicular already points away", model.NewVec3(0, 0, -1)},
		{"perpendicular flipped away", model.NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turret := newTestTurret()
			pos := model.NewVec3(10, 0, 0)
			ai := newTestAI(t, 0x20000001, pos, turret, nil)

			bullet := model.NewBullet(0x30000001, model.NewVec3(10, 0, 2), tt.bulletDir, 10, 0)
			ai.Tick(0.1, snapshotOf(nil, bullet))

			assert.Equal(t, model.DecisionEvadeThreat, ai.LastDecision())
			require.Equal(t, model.ShipStateEvade, ai.State())

			target := ai.TargetPosition()
			assert.InDelta(t, 13, target.X, eps)
			assert.InDelta(t, 0, target.Z, eps)

			// Offset is perpendicular to the bullet's flight
			assert.InDelta(t, 0, target.Sub(pos).Dot(tt.bulletDir), eps)
			// and leads away from the turret
			assert.Greater(t, target.Distance(turret.Location()), pos.Distance(turret.Location()))
		})
	}
}

func TestShipAI_ThreatOutsideEvadeDistanceIgnored(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)

	bullet := model.NewBullet(0x30000001, model.NewVec3(10, 0, 5), model.NewVec3(0, 0, -1), 10, 0)
	ai.Tick(0.1, snapshotOf(nil, bullet))

	assert.Equal(t, model.DecisionKeepCourse, ai.LastDecision())
	assert.Equal(t, model.ShipStatePatrol, ai.State())
}

func TestShipAI_EvadeExitWhenThreatCleared(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)
	enterEvade(t, ai)

	ai.Tick(0.1, emptyView())

	assert.Equal(t, model.ShipStatePatrol, ai.State())
}

func TestShipAI_EvadeExitOnTimeout(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)
	enterEvade(t, ai)

	// Threat still detected but no longer inside the evade distance.
	far := model.NewBullet(0x30000002, model.NewVec3(10, 0, 5), model.NewVec3(0, 0, -1), 10, 0)
	view := snapshotOf(nil, far)

	ai.Tick(0.6, view)
	assert.Equal(t, model.ShipStateEvade, ai.State(), "timer not yet over threshold")

	ai.Tick(0.6, view)
	assert.Equal(t, model.ShipStatePatrol, ai.State())
}

func TestShipAI_RetreatMasksEvade(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)

	require.True(t, ai.OnTargetContact(turret))
	require.Equal(t, model.ShipStateRetreat, ai.State())

	bullet := model.NewBullet(0x30000001, model.NewVec3(10, 0, 1), model.NewVec3(0, 0, -1), 10, 0)
	ai.Tick(0.1, snapshotOf(nil, bullet))

	assert.Equal(t, model.DecisionKeepCourse, ai.LastDecision())
	assert.Equal(t, model.ShipStateRetreat, ai.State())
}

func TestShipAI_RetreatEndsAfterDuration(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)
	require.True(t, ai.OnTargetContact(turret))

	ai.Tick(1.0, emptyView())
	assert.Equal(t, model.ShipStateRetreat, ai.State())

	ai.Tick(1.0, emptyView())
	assert.Equal(t, model.ShipStatePatrol, ai.State())
}

func TestShipAI_AttackCooldownLaw(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)
	enterAttack(t, ai)

	// Grace period: Attack holds until the state timer exceeds it.
	for range 3 {
		ai.Tick(1, emptyView())
		require.Equal(t, model.ShipStateAttack, ai.State())
	}
	ai.Tick(1, emptyView())
	require.Equal(t, model.ShipStatePatrol, ai.State())
	require.True(t, ai.AttackedRecently())

	// Every other precondition holds, but the cooldown has not fully elapsed.
	for range 3 {
		ai.Tick(0.5, emptyView())
		assert.Equal(t, model.ShipStatePatrol, ai.State())
		assert.NotEqual(t, model.DecisionAttackTarget, ai.LastDecision())
	}

	ai.Tick(0.5, emptyView())
	assert.False(t, ai.AttackedRecently())
	assert.Equal(t, model.ShipStateAttack, ai.State())
}

func TestShipAI_AttackTargetDestroyed(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)
	enterAttack(t, ai)
	last := ai.TargetPosition()

	turret.ApplyDamage(1000)
	require.True(t, turret.IsDestroyed())

	assert.NotPanics(t, func() {
		ai.Tick(0.1, emptyView())
		ai.PhysicsStep(0.02)
	})
	assert.Equal(t, model.ShipStateAttack, ai.State())
	assert.Equal(t, last, ai.TargetPosition())
}

func TestShipAI_TargetContact(t *testing.T) {
	turret := newTestTurret()
	score := &fakeScore{total: 50}
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, score)
	enterAttack(t, ai)

	require.True(t, ai.OnTargetContact(turret))

	assert.Equal(t, model.ShipStateRetreat, ai.State())
	current, _ := turret.Health()
	assert.InDelta(t, 90, current, eps)
	assert.Equal(t, 40, score.total)

	// Retreat heads straight away from the turret at boosted speed.
	assert.InDelta(t, 14, ai.TargetPosition().X, eps)
	ai.PhysicsStep(0.02)
	v := ai.ship.Velocity()
	assert.InDelta(t, 4.5, v.X, eps)
	assert.InDelta(t, 0, v.Z, eps)
}

func TestShipAI_TargetContactScoreClampsAtZero(t *testing.T) {
	turret := newTestTurret()
	score := &fakeScore{}
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, score)

	require.True(t, ai.OnTargetContact(turret))
	assert.Equal(t, 0, score.total)
}

func TestShipAI_ThreatContactDestroysOnce(t *testing.T) {
	score := &fakeScore{}
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), score)
	enterEvade(t, ai)

	despawned := 0
	ai.SetDespawnFunc(func(*model.Ship) { despawned++ })

	b1 := model.NewBullet(0x30000005, model.NewVec3(10, 0, 0), model.NewVec3(1, 0, 0), 10, 0)
	b2 := model.NewBullet(0x30000006, model.NewVec3(10, 0, 0), model.NewVec3(1, 0, 0), 10, 0)

	assert.True(t, ai.OnThreatContact(b1))
	assert.False(t, ai.OnThreatContact(b1))
	assert.False(t, ai.OnThreatContact(b2))

	assert.Equal(t, model.ShipStateDestroyed, ai.State())
	assert.False(t, b1.IsActive())
	assert.False(t, b2.IsActive())
	assert.Equal(t, model.DefaultShipTemplate().PointsOnDestroy, score.total)
	assert.Equal(t, 1, score.calls)
	assert.Equal(t, 1, despawned)
}

func TestShipAI_DestroyedIsAbsorbing(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)
	require.True(t, ai.OnThreatContact(nil))
	count := ai.TransitionCount()

	ai.Tick(5, emptyView())
	ai.PhysicsStep(0.02)
	assert.False(t, ai.OnTargetContact(turret))
	assert.False(t, ai.transition(model.ShipStatePatrol))
	ai.Start()

	assert.Equal(t, model.ShipStateDestroyed, ai.State())
	assert.Equal(t, count, ai.TransitionCount())
	current, _ := turret.Health()
	assert.InDelta(t, 100, current, eps)
}

func TestShipAI_PeerAvoidance(t *testing.T) {
	turret := newTestTurret()
	a := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)
	b := newTestAI(t, 0x20000002, model.NewVec3(11, 0, 0), turret, nil)
	ships := []*model.Ship{a.Ship(), b.Ship()}

	const dt = 0.1
	startA, startB := a.OrbitAngle(), b.OrbitAngle()

	view := snapshotOf(ships)
	a.Tick(dt, view)
	b.Tick(dt, view)

	assert.Equal(t, model.DecisionAvoidPeers, a.LastDecision())
	assert.Equal(t, model.DecisionAvoidPeers, b.LastDecision())

	// Each repulsion points away from the other ship.
	assert.Less(t, a.AvoidanceVector().X, 0.0)
	assert.Greater(t, b.AvoidanceVector().X, 0.0)

	boosted := (model.DefaultShipTemplate().RotationSpeed*0.5 + DefaultParams().AvoidOrbitBoost) * dt
	assert.InDelta(t, boosted, a.OrbitAngle()-startA, eps)
	assert.InDelta(t, boosted, b.OrbitAngle()-startB, eps)

	// Target is the orbit point pushed along the repulsion.
	rad := a.OrbitAngle() * math.Pi / 180
	orbit := model.NewVec3(math.Cos(rad), 0, math.Sin(rad)).Scale(model.DefaultShipTemplate().OrbitRadius)
	want := orbit.Add(model.NewVec3(-DefaultParams().AvoidOffset, 0, 0))
	assert.InDelta(t, want.X, a.TargetPosition().X, 1e-6)
	assert.InDelta(t, want.Z, a.TargetPosition().Z, 1e-6)

	// Boost applies for the avoiding tick only.
	b.Ship().SetPosition(model.NewVec3(-10, 0, 0))
	before := a.OrbitAngle()
	a.Tick(dt, snapshotOf(ships))

	assert.Equal(t, model.DecisionKeepCourse, a.LastDecision())
	assert.InDelta(t, model.DefaultShipTemplate().RotationSpeed*0.5*dt, a.OrbitAngle()-before, eps)
}

func TestShipAI_AvoidanceModes(t *testing.T) {
	self := model.NewVec3(10, 0, 0)
	peers := []model.Vec3{
		model.NewVec3(11, 0, 0), // 1.0 away, +X side
		model.NewVec3(10, 0, 2), // 2.0 away, +Z side
	}

	tests := []struct {
		name  string
		mode  AvoidanceMode
		wantX float64
		wantZ float64
	}{
		{"all sums weighted repulsion", AvoidanceAll, -1, -0.5},
		{"nearest uses closest peer only", AvoidanceNearest, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ship := model.NewShip(0x20000001, model.DefaultShipTemplate(), self)
			params := testParams()
			params.AvoidanceMode = tt.mode
			ai := NewShipAI(ship, params, newTestTurret(), nil)

			ships := []*model.Ship{ship}
			for i, p := range peers {
				ships = append(ships, model.NewShip(uint32(0x20000010+i), model.DefaultShipTemplate(), p))
			}

			require.True(t, ai.checkNearbyShips(snapshotOf(ships), self))
			assert.InDelta(t, tt.wantX, ai.avoidance.X, eps)
			assert.InDelta(t, tt.wantZ, ai.avoidance.Z, eps)
		})
	}
}

func TestShipAI_CoincidentPeerNoNaN(t *testing.T) {
	pos := model.NewVec3(10, 0, 0)
	a := newTestAI(t, 0x20000001, pos, newTestTurret(), nil)
	other := model.NewShip(0x20000002, model.DefaultShipTemplate(), pos)

	a.Tick(0.1, snapshotOf([]*model.Ship{a.Ship(), other}))

	assert.Equal(t, model.DecisionAvoidPeers, a.LastDecision())
	target := a.TargetPosition()
	assert.False(t, math.IsNaN(target.X) || math.IsNaN(target.Z))
}

func TestShipAI_ExitBeforeEnter(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)

	var hooks []string
	ai.traceHook = func(hook string, state model.ShipState) {
		hooks = append(hooks, hook+":"+state.String())
	}

	ai.Tick(2, emptyView())

	assert.Equal(t, []string{"exit:PATROL", "enter:ATTACK", "update:ATTACK"}, hooks)
}

func TestShipAI_OneTransitionPerTick(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)

	ai.transitionsThisTick = 0
	assert.True(t, ai.tryTransition(model.ShipStateEvade))
	assert.False(t, ai.tryTransition(model.ShipStatePatrol))
	assert.Equal(t, model.ShipStateEvade, ai.State())

	// Contacts are separate events and still apply.
	assert.True(t, ai.OnTargetContact(newTestTurret()))
	assert.Equal(t, model.ShipStateRetreat, ai.State())
}

func TestShipAI_TransitionsBoundedOverRun(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(6, 0, 0), turret, nil)

	for i := range 600 {
		var bullets []*model.Bullet
		// Intermittent threats passing close by.
		if i%37 < 5 {
			pos := ai.Ship().Position().Add(model.NewVec3(0, 0, 2))
			bullets = append(bullets, model.NewBullet(uint32(0x30000000+i), pos, model.NewVec3(1, 0, 0), 10, 0))
		}

		before := ai.TransitionCount()
		ai.Tick(1.0/30, snapshotOf([]*model.Ship{ai.Ship()}, bullets...))
		ai.PhysicsStep(1.0 / 30)
		ai.Ship().SetPosition(ai.Ship().Position().Add(ai.Ship().Velocity().Scale(1.0 / 30)))

		require.LessOrEqual(t, ai.TransitionCount()-before, uint64(1), "tick %d", i)
	}
}

func TestShipAI_PhysicsStep(t *testing.T) {
	turret := newTestTurret()
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), turret, nil)
	ai.targetPos = model.NewVec3(20, 0, 0)

	const dt = 0.02
	ai.PhysicsStep(dt)

	v := ai.Ship().Velocity()
	assert.InDelta(t, 3, v.X, eps)
	assert.InDelta(t, 0, v.Y, eps)
	assert.InDelta(t, 0, v.Z, eps)

	// Heading turns toward +X (yaw 90) at most rotationSpeed*dt per step.
	assert.InDelta(t, 120*dt, ai.Ship().Heading(), eps)
}

func TestShipAI_PhysicsStepIgnoresVertical(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)
	ai.targetPos = model.NewVec3(10, 50, 4)

	ai.PhysicsStep(0.02)

	v := ai.Ship().Velocity()
	assert.InDelta(t, 0, v.Y, eps)
	assert.InDelta(t, 3, v.Z, eps)
}

func TestShipAI_PhysicsStepZeroVelocityKeepsHeading(t *testing.T) {
	ai := newTestAI(t, 0x20000001, model.NewVec3(10, 0, 0), newTestTurret(), nil)
	ai.Ship().SetHeading(45)
	ai.targetPos = ai.Ship().Position()

	ai.PhysicsStep(0.02)

	assert.True(t, ai.Ship().Velocity().IsZero())
	assert.InDelta(t, 45, ai.Ship().Heading(), eps)
}

func TestShipAI_NoTarget(t *testing.T) {
	ship := model.NewShip(0x20000001, model.DefaultShipTemplate(), model.NewVec3(3, 0, 3))
	ai := NewShipAI(ship, testParams(), (*model.Turret)(nil), nil)
	ai.Initialize(ship.Position())
	ai.Start()

	assert.NotPanics(t, func() {
		for range 10 {
			ai.Tick(1, emptyView())
			ai.PhysicsStep(0.02)
		}
	})
	assert.Equal(t, model.ShipStatePatrol, ai.State())
	assert.Equal(t, ship.Position(), ai.TargetPosition())

	// Retreat without a target backs off opposite the heading (0 = +Z).
	require.True(t, ai.OnTargetContact(newTestTurret()))
	assert.InDelta(t, -1, ai.retreatDir.Z, eps)
}

func BenchmarkShipAI_Tick(b *testing.B) {
	turret := newTestTurret()
	ships := make([]*model.Ship, 0, 64)
	ais := make([]*ShipAI, 0, 64)
	for i := range 64 {
		angle := float64(i) * 2 * math.Pi / 64
		pos := model.NewVec3(10*math.Cos(angle), 0, 10*math.Sin(angle))
		ship := model.NewShip(uint32(0x20000000+i), model.DefaultShipTemplate(), pos)
		ai := NewShipAI(ship, DefaultParams(), turret, nil)
		ai.Initialize(pos)
		ai.Start()
		ships = append(ships, ship)
		ais = append(ais, ai)
	}
	bullets := []*model.Bullet{
		model.NewBullet(0x30000001, model.NewVec3(5, 0, 5), model.NewVec3(1, 0, 0), 10, 0),
	}
	view := snapshotOf(ships, bullets...)

	for b.Loop() {
		for _, ai := range ais {
			ai.Tick(1.0/60, view)
		}
	}
}
