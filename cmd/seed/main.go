package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/roster"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var venueID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机场馆, 2: 插入随机用户, 3: 插入随机可用时间和请假记录, 4: 插入随机排班表)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&venueID, "venue-id", 0, "随机排班表所属的场馆 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的场馆数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			venue := utils.GenerateRandomVenue()
			if err := repo.CreateVenue(venue); err != nil {
				slog.Error("无法插入场馆", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入场馆成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		venues, err := repo.GetAllVenues()
		if err != nil {
			slog.Error("无法获取场馆列表", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			// 大约每五个用户生成一个场馆经理
			role := domain.RoleStaff
			if i%5 == 4 {
				role = domain.RoleVenueManager
			}

			user, err := utils.GenerateRandomUser(role, cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}
			if role == domain.RoleVenueManager && len(venues) > 0 {
				user.VenueIDs = []int64{venues[rand.Intn(len(venues))].ID}
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 3:
		staff, err := repo.GetActiveStaff()
		if err != nil {
			slog.Error("无法获取在职员工列表", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, user := range staff {
			for day := int32(1); day <= 7; day++ {
				av := utils.GenerateRandomAvailability(user.ID, day)
				if err := repo.UpsertAvailability(av); err != nil {
					slog.Error("无法插入可用时间", slog.String("error", err.Error()))
					continue
				}
			}

			// 少数员工有请假记录
			if rand.Intn(4) == 0 {
				req := utils.GenerateRandomTimeOff(user.ID)
				if err := repo.CreateTimeOffRequest(req); err != nil {
					slog.Error("无法插入请假记录", slog.String("error", err.Error()))
					continue
				}
			}
			cnt++
		}

		slog.Info("插入可用时间和请假记录成功", slog.Int("count", cnt))
	case 4:
		if venueID <= 0 {
			slog.Error("请输入合法的场馆 ID")
			return
		}
		if n <= 0 {
			slog.Error("请输入合法的排班表数量")
			return
		}

		staff, err := repo.GetActiveStaff()
		if err != nil {
			slog.Error("无法获取在职员工列表", slog.String("error", err.Error()))
			return
		}
		if len(staff) == 0 {
			slog.Error("数据库中没有在职员工，请先插入用户")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			// 每张排班表覆盖从本周一开始往后数的第 i 周。
			// 同一周重复执行时会作为同一条链的下一个版本插入
			weekStart := roster.NormalizeWeekStart(time.Now()).AddDate(0, 0, 7*i)
			newRoster := roster.NewChainDraft(venueID, weekStart, "测试排班表"+utils.GenerateRandomID(3, 3), "随机生成的测试数据", staff[0].ID)

			shiftCount := rand.Intn(10) + 5
			shifts := make([]*domain.RosterShift, 0, shiftCount)
			for j := 0; j < shiftCount; j++ {
				staffID := staff[rand.Intn(len(staff))].ID
				shifts = append(shifts, utils.GenerateRandomShift(weekStart, &staffID))
			}

			entry := &domain.RosterHistory{
				Action:      domain.ActionCreated,
				Changes:     map[string]any{"shiftCount": len(shifts), "source": "seed"},
				PerformedBy: staff[0].ID,
			}
			if err := repo.CreateChainDraft(&repository.ChainDraftParams{
				Roster: newRoster,
				Shifts: shifts,
				Entry:  entry,
			}); err != nil {
				slog.Error("无法插入排班表", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入排班表成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
