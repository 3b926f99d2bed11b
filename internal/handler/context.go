package handler

type ContextKey string

var (
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	UserInfoCtx        ContextKey = "userInfo"
	ChargingStationCtx ContextKey = "chargingStation"
	ParkingLotCtx      ContextKey = "parkingLot"
	SiteCtx            ContextKey = "site"
	RecommendationCtx  ContextKey = "recommendation"
	OptimizationRunCtx ContextKey = "optimizationRun"
)
