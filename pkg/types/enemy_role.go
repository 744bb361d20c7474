// Package types 定义平衡引擎各组件之间共享的基础类型
package types

// EnemyRole 敌人的行为角色分类
// 角色用于角色上限（RoleCaps）约束，与具体敌人类型解耦
type EnemyRole string

const (
	RoleFodder  EnemyRole = "fodder"  // 杂兵（基准敌人所属角色）
	RoleRusher  EnemyRole = "rusher"  // 冲锋者：高移速
	RoleTank    EnemyRole = "tank"    // 坦克：高血量低移速
	RoleRanged  EnemyRole = "ranged"  // 远程攻击者
	RoleSpecial EnemyRole = "special" // 特殊能力（召唤者、自爆等）
)

// AllRoles 按固定顺序返回全部角色，用于报告和遍历时保持输出稳定
func AllRoles() []EnemyRole {
	return []EnemyRole{RoleFodder, RoleRusher, RoleTank, RoleRanged, RoleSpecial}
}

// IsValid 检查角色是否为已知取值
func (r EnemyRole) IsValid() bool {
	switch r {
	case RoleFodder, RoleRusher, RoleTank, RoleRanged, RoleSpecial:
		return true
	}
	return false
}
